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

package querycache

import (
	"context"

	"github.com/opsdeck/console/pkg/types"
)

// FetchFunc loads one page of the entry's query. Page numbers are
// 1-based. The limit is baked into the function by whoever issued the
// query, it is not part of the cache key.
type FetchFunc func(ctx context.Context, page int64) (*types.ListResult, error)

// entry owns every page fetched for one cache key. All fields are
// guarded by the service mutex.
type entry struct {
	key  string
	kind types.Kind

	fetch FetchFunc
	refs  int

	// gen supersedes in-flight work: a response carrying an old
	// generation is discarded, never applied.
	gen       int64
	genCtx    context.Context
	genCancel context.CancelFunc

	// pages are applied strictly in page order. Responses that arrive
	// early wait in pending until every earlier page has been applied.
	pages        []*types.ListResult
	pending      map[int64]*types.ListResult
	inflight     map[int64]struct{}
	maxRequested int64

	// items is the last good snapshot: it survives refetches and
	// errors so consumers never see a blank list while data exists.
	items   []types.Record
	hasNext bool
	err     error

	watchers map[*Handle]struct{}
}

func newEntry(key string, kind types.Kind, fetch FetchFunc) *entry {
	return &entry{
		key:      key,
		kind:     kind,
		fetch:    fetch,
		pending:  map[int64]*types.ListResult{},
		inflight: map[int64]struct{}{},
		watchers: map[*Handle]struct{}{},
	}
}

// resetGeneration supersedes all in-flight fetches and clears page
// state. The last good snapshot is retained on purpose.
func (e *entry) resetGeneration() {
	if e.genCancel != nil {
		e.genCancel()
	}
	e.gen++
	e.genCtx, e.genCancel = context.WithCancel(context.Background())
	e.pages = nil
	e.pending = map[int64]*types.ListResult{}
	e.inflight = map[int64]struct{}{}
	e.maxRequested = 0
	e.err = nil
}

// applyReady appends every pending page that is next in sequence, then
// atomically rebuilds the visible snapshot from the applied pages.
func (e *entry) applyReady() bool {
	applied := false
	for {
		next := int64(len(e.pages)) + 1
		page, ok := e.pending[next]
		if !ok {
			break
		}
		delete(e.pending, next)
		e.pages = append(e.pages, page)
		applied = true
	}
	if !applied {
		return false
	}

	items := make([]types.Record, 0, len(e.pages)*int(e.pages[0].Pagination.Limit))
	for _, page := range e.pages {
		items = append(items, page.Data...)
	}
	e.items = items
	e.hasNext = e.pages[len(e.pages)-1].Pagination.HasNext()
	e.err = nil
	return true
}

func (e *entry) isFetching() bool {
	return len(e.inflight) > 0 || len(e.pending) > 0
}

func (e *entry) isFetchingNextPage() bool {
	return len(e.pages) > 0 && e.maxRequested > int64(len(e.pages)) && e.isFetching()
}

func (e *entry) isLoading() bool {
	return e.items == nil && e.isFetching()
}

func (e *entry) snapshot() Snapshot {
	items := e.items
	return Snapshot{
		Items:              items,
		Err:                e.err,
		IsLoading:          e.isLoading(),
		IsFetching:         e.isFetching(),
		IsFetchingNextPage: e.isFetchingNextPage(),
		HasNextPage:        e.hasNext,
	}
}

func (e *entry) notifyWatchers() {
	for h := range e.watchers {
		select {
		case h.updates <- struct{}{}:
		default:
		}
	}
}
