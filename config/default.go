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

import "strconv"

const (
	defaultHost         = "127.0.0.1"
	defaultPort         = 7600
	defaultStorePath    = "console.db"
	defaultSeedSize     = 45
	defaultDebounceMs   = 500
	defaultPageLimit    = 20
	defaultCacheEntries = 64
)

func DefaultConfig() Config {
	cfg := Config{
		Api: Api{
			Enable:  true,
			Host:    defaultHost,
			Port:    defaultPort,
			Metrics: true,
		},
		Store: Store{Path: defaultStorePath, SeedSize: defaultSeedSize},
	}
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Api.Host == "" {
		cfg.Api.Host = defaultHost
	}
	if cfg.Api.Port == 0 {
		cfg.Api.Port = defaultPort
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath
	}
	if cfg.Client.Endpoint == "" {
		cfg.Client.Endpoint = "http://" + cfg.Api.Host + ":" + strconv.Itoa(cfg.Api.Port)
	}
	if cfg.Client.DebounceMs == 0 {
		cfg.Client.DebounceMs = defaultDebounceMs
	}
	if cfg.Client.PageLimit == 0 {
		cfg.Client.PageLimit = defaultPageLimit
	}
	if cfg.CacheEntries == 0 {
		cfg.CacheEntries = defaultCacheEntries
	}
}
