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

// Snapshot is the consumer view of an entry at one point in time.
// Items always holds the last good record sequence: during a refetch it
// keeps the previous data until page 1 of the new query state arrives.
type Snapshot struct {
	Items              []types.Record
	Err                error
	IsLoading          bool
	IsFetching         bool
	IsFetchingNextPage bool
	HasNextPage        bool
}

// Handle is one consumer's subscription to a cache entry. Several
// handles may share one entry and observe the same updates.
type Handle struct {
	svc     *Service
	entry   *entry
	updates chan struct{}
}

func (h *Handle) Snapshot() Snapshot {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	return h.entry.snapshot()
}

// Updates signals after every visible state change. The channel carries
// no payload, read a fresh Snapshot after receiving.
func (h *Handle) Updates() <-chan struct{} {
	return h.updates
}

// FetchNextPage requests the page after the last applied one. It is a
// no-op while that page is already in flight or when there is no next
// page, so two rapid calls issue exactly one request.
func (h *Handle) FetchNextPage() {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.svc.fetchNextLocked(h.entry)
}

// Refetch reloads the query from page 1 in the background. The current
// snapshot stays visible until the new page 1 arrives.
func (h *Handle) Refetch() {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	h.svc.refetchLocked(h.entry)
}

// PrefetchPages eagerly requests pages 1..n of the current generation,
// used to restore a deep scroll position from a shared link. Responses
// may arrive in any order, they are applied in page order.
func (h *Handle) PrefetchPages(n int64) {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	for page := int64(1); page <= n; page++ {
		if page <= int64(len(h.entry.pages)) {
			continue
		}
		if _, waiting := h.entry.pending[page]; waiting {
			continue
		}
		h.svc.startFetchLocked(h.entry, page)
	}
}

// NotifySentinel is wired to the viewport-intersection signal of the
// list's sentinel row: it pulls the next page when one exists and no
// next-page fetch is running.
func (h *Handle) NotifySentinel() {
	h.svc.mu.Lock()
	defer h.svc.mu.Unlock()
	if h.entry.hasNext && !h.entry.isFetchingNextPage() {
		h.svc.fetchNextLocked(h.entry)
	}
}

// Locate keeps fetching pages until the record with the given id is
// loaded or pagination is exhausted. A miss is the benign
// types.ErrNotFound, not a fetch failure.
func (h *Handle) Locate(ctx context.Context, id string) (types.Record, error) {
	for {
		snap := h.Snapshot()
		for _, rec := range snap.Items {
			if rec.ID() == id {
				return rec, nil
			}
		}
		if snap.Err != nil {
			return nil, snap.Err
		}
		if !snap.HasNextPage && !snap.IsFetching {
			return nil, types.ErrNotFound
		}
		if snap.HasNextPage && !snap.IsFetchingNextPage {
			h.FetchNextPage()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case _, ok := <-h.updates:
			if !ok {
				return nil, types.ErrClosed
			}
		}
	}
}

// Close releases the subscription. The entry itself stays cached until
// the idle LRU drops it.
func (h *Handle) Close() {
	h.svc.releaseHandle(h)
}
