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

// Package querycache keeps an incrementally-loaded page cache per
// distinct query against a paginated list endpoint. One entry per cache
// key owns all of that query's pages, supports background refetch
// without dropping the rendered snapshot, and is invalidated by push
// events per resource kind.
package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/hyponet/eventbus"
	"go.uber.org/zap"

	"github.com/opsdeck/console/pkg/events"
	"github.com/opsdeck/console/pkg/types"
	"github.com/opsdeck/console/utils/logger"
	"github.com/opsdeck/console/utils/metrics"
)

const defaultIdleEntries = 64

// Service is the process-wide page cache. It is constructed explicitly
// and passed to consumers so tests can run isolated instances.
type Service struct {
	mu      sync.Mutex
	entries map[string]*entry

	// idle tracks keys with no live handles; LRU eviction there is
	// what actually destroys an entry.
	idle gcache.Cache

	busLid string
	logger *zap.SugaredLogger
}

type Option func(*config)

type config struct {
	idleEntries int
}

// WithIdleEntries sets how many unreferenced entries are retained
// before the least recently used one is dropped.
func WithIdleEntries(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.idleEntries = n
		}
	}
}

func New(opts ...Option) *Service {
	cfg := config{idleEntries: defaultIdleEntries}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Service{
		entries: map[string]*entry{},
		logger:  logger.NewLogger("querycache"),
	}
	// evictedFunc runs inside idle.Set/Remove, which only happen under
	// s.mu, so it may touch s.entries without taking the lock.
	s.idle = gcache.New(cfg.idleEntries).LRU().
		EvictedFunc(s.onIdleEvicted).Build()
	s.busLid = eventbus.Subscribe(events.TopicAllResourceChanged, s.handleResourceChanged)
	return s
}

// Close detaches the service from the push invalidation channel and
// supersedes all in-flight fetches.
func (s *Service) Close() {
	eventbus.Unsubscribe(s.busLid)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.genCancel != nil {
			e.genCancel()
		}
	}
	s.entries = map[string]*entry{}
	s.idle.Purge()
}

// Query subscribes to the entry for the given key, creating it and
// eagerly fetching page 1 on first use. Consumers must Close the
// returned handle when done with it.
func (s *Service) Query(key Key, fetch FetchFunc) (*Handle, error) {
	if !key.Kind.IsValid() {
		return nil, types.ErrUnknownResource
	}
	if fetch == nil {
		return nil, types.ErrUnsupported
	}

	hashKey := key.hash()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[hashKey]
	if ok {
		metrics.QueryCacheHits.Inc()
		e.refs++
		// refs is bumped first so the eviction hook cannot reap the
		// entry while it leaves the idle list
		s.idle.Remove(hashKey)
	} else {
		metrics.QueryCacheMisses.Inc()
		e = newEntry(hashKey, key.Kind, fetch)
		e.resetGeneration()
		e.refs++
		s.entries[hashKey] = e
		s.startFetchLocked(e, 1)
	}

	h := &Handle{
		svc:     s,
		entry:   e,
		updates: make(chan struct{}, 1),
	}
	e.watchers[h] = struct{}{}
	return h, nil
}

// Len reports how many entries the cache currently holds.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Service) startFetchLocked(e *entry, page int64) {
	if _, running := e.inflight[page]; running {
		return
	}
	e.inflight[page] = struct{}{}
	if page > e.maxRequested {
		e.maxRequested = page
	}
	go s.doFetch(e, e.gen, e.genCtx, page)
}

func (s *Service) doFetch(e *entry, gen int64, ctx context.Context, page int64) {
	result, err := e.fetch(ctx, page)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e.gen != gen {
		// superseded by a newer query state, discard
		return
	}
	delete(e.inflight, page)

	if err != nil {
		metrics.QueryCacheFetchErrors.WithLabelValues(string(e.kind)).Inc()
		s.logger.Warnw("page fetch failed", "key", e.key, "page", page, "err", err)
		e.err = err
		if e.maxRequested > int64(len(e.pages)) {
			// allow the next-page request to be retried
			e.maxRequested = int64(len(e.pages))
		}
		e.notifyWatchers()
		return
	}

	metrics.QueryCachePageFetches.WithLabelValues(string(e.kind)).Inc()
	e.pending[page] = result
	if e.applyReady() {
		e.notifyWatchers()
	}
}

func (s *Service) fetchNextLocked(e *entry) {
	if !e.hasNext || len(e.pages) == 0 {
		return
	}
	next := int64(len(e.pages)) + 1
	if e.maxRequested >= next {
		// that page is already in flight or waiting to be applied
		return
	}
	s.startFetchLocked(e, next)
}

func (s *Service) refetchLocked(e *entry) {
	e.resetGeneration()
	s.startFetchLocked(e, 1)
	e.notifyWatchers()
}

func (s *Service) handleResourceChanged(evt *types.ResourceEvent) {
	if evt == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if e.kind != evt.Kind {
			continue
		}
		metrics.QueryCacheInvalidations.WithLabelValues(string(e.kind)).Inc()
		if e.refs == 0 {
			// nobody is watching, dropping is cheaper than refreshing
			s.idle.Remove(key)
			delete(s.entries, key)
			continue
		}
		s.logger.Debugw("entry stale, refetching", "key", key, "kind", evt.Kind)
		s.refetchLocked(e)
	}
}

func (s *Service) releaseHandle(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := h.entry
	if _, watching := e.watchers[h]; !watching {
		return
	}
	delete(e.watchers, h)
	close(h.updates)
	e.refs--
	if e.refs > 0 {
		return
	}
	_ = s.idle.SetWithExpire(e.key, time.Now(), time.Hour)
}

func (s *Service) onIdleEvicted(key, _ interface{}) {
	hashKey := key.(string)
	e, ok := s.entries[hashKey]
	if !ok || e.refs > 0 {
		return
	}
	if e.genCancel != nil {
		e.genCancel()
	}
	delete(s.entries, hashKey)
}
