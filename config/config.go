/*
 Copyright 2024 OpsDeck Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

type Config struct {
	Api    Api    `json:"api"`
	Store  Store  `json:"store"`
	Client Client `json:"client"`

	CacheEntries int  `json:"cache_entries,omitempty"`
	Debug        bool `json:"debug,omitempty"`
}

// Api configures the development console API server.
type Api struct {
	Enable  bool   `json:"enable"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Pprof   bool   `json:"pprof"`
	Metrics bool   `json:"metrics"`
}

// Store configures the development record store.
type Store struct {
	Path     string `json:"path"`
	SeedSize int    `json:"seed_size,omitempty"`
}

// Client configures the query engine side: which console API to talk to
// and how long the search box debounce waits.
type Client struct {
	Endpoint   string `json:"endpoint"`
	DebounceMs int    `json:"debounce_ms,omitempty"`
	PageLimit  int    `json:"page_limit,omitempty"`
}
