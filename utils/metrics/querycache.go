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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueryCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "console_querycache_hits_total",
		Help: "Queries answered from an existing cache entry.",
	})
	QueryCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "console_querycache_misses_total",
		Help: "Queries that created a new cache entry.",
	})
	QueryCachePageFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_querycache_page_fetches_total",
		Help: "Pages fetched from the list endpoint, by resource kind.",
	}, []string{"kind"})
	QueryCacheFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_querycache_fetch_errors_total",
		Help: "Failed page fetches, by resource kind.",
	}, []string{"kind"})
	QueryCacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_querycache_invalidations_total",
		Help: "Entries marked stale by push invalidation, by resource kind.",
	}, []string{"kind"})
)
