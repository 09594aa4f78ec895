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

import "fmt"

func Verify(cfg Config) error {
	if cfg.Api.Enable {
		if cfg.Api.Port <= 0 || cfg.Api.Port > 65535 {
			return fmt.Errorf("api port out of range: %d", cfg.Api.Port)
		}
		if cfg.Store.Path == "" {
			return fmt.Errorf("store path not set")
		}
	}
	if cfg.Client.DebounceMs < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if cfg.Client.PageLimit < 1 {
		return fmt.Errorf("page limit must be at least 1")
	}
	if cfg.CacheEntries < 1 {
		return fmt.Errorf("cache entries must be at least 1")
	}
	return nil
}
