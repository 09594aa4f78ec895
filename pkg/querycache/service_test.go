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
	"fmt"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/opsdeck/console/pkg/events"
	"github.com/opsdeck/console/pkg/types"
)

var _ = Describe("TestIncrementalPaging", func() {
	var (
		svc     *Service
		backend *fakeBackend
		handle  *Handle
	)

	BeforeEach(func() {
		svc = New()
		backend = newFakeBackend(45, 20)

		var err error
		handle, err = svc.Query(Key{Kind: types.KindCredentials}, backend.fetch)
		Expect(err).Should(BeNil())
	})
	AfterEach(func() {
		handle.Close()
		svc.Close()
	})

	Context("load 45 records page by page", func() {
		It("page 1 should arrive eagerly", func() {
			Eventually(func() int {
				return len(handle.Snapshot().Items)
			}, time.Second*5, time.Millisecond*10).Should(Equal(20))
			Expect(handle.Snapshot().HasNextPage).Should(BeTrue())
		})
		It("sentinel should pull page 2", func() {
			handle.NotifySentinel()
			Eventually(func() int {
				return len(handle.Snapshot().Items)
			}, time.Second*5, time.Millisecond*10).Should(Equal(40))
		})
		It("last page should be short and final", func() {
			handle.NotifySentinel()
			Eventually(func() int {
				return len(handle.Snapshot().Items)
			}, time.Second*5, time.Millisecond*10).Should(Equal(45))

			snap := handle.Snapshot()
			Expect(snap.HasNextPage).Should(BeFalse())
			Expect(snap.Items[44].ID()).Should(Equal("rec-045"))

			// exhausted, nothing more to pull
			handle.NotifySentinel()
			Consistently(func() int {
				return backend.callCount(4)
			}, time.Millisecond*100, time.Millisecond*10).Should(Equal(0))
		})
	})

	Context("rapid next-page requests", func() {
		It("should issue exactly one fetch", func() {
			Eventually(func() int {
				return len(handle.Snapshot().Items)
			}, time.Second*5, time.Millisecond*10).Should(Equal(20))

			release := backend.holdPage(2)
			handle.FetchNextPage()
			handle.FetchNextPage()
			handle.NotifySentinel()
			release()

			Eventually(func() int {
				return len(handle.Snapshot().Items)
			}, time.Second*5, time.Millisecond*10).Should(Equal(40))
			Expect(backend.callCount(2)).Should(Equal(1))
		})
	})
})

var _ = Describe("TestRefetch", func() {
	var (
		svc     *Service
		backend *fakeBackend
		handle  *Handle
	)

	BeforeEach(func() {
		svc = New()
		backend = newFakeBackend(5, 20)

		var err error
		handle, err = svc.Query(Key{Kind: types.KindServers}, backend.fetch)
		Expect(err).Should(BeNil())

		Eventually(func() int {
			return len(handle.Snapshot().Items)
		}, time.Second*5, time.Millisecond*10).Should(Equal(5))
	})
	AfterEach(func() {
		handle.Close()
		svc.Close()
	})

	It("should keep the old snapshot until new data lands", func() {
		release := backend.holdPage(1)
		handle.Refetch()

		snap := handle.Snapshot()
		Expect(len(snap.Items)).Should(Equal(5))
		Expect(snap.IsFetching).Should(BeTrue())
		Expect(snap.IsLoading).Should(BeFalse())

		backend.setRecords([]types.Record{{"id": "rec-new", "name": "fresh"}})
		release()

		Eventually(func() int {
			return len(handle.Snapshot().Items)
		}, time.Second*5, time.Millisecond*10).Should(Equal(1))
		Expect(handle.Snapshot().Items[0].ID()).Should(Equal("rec-new"))
	})

	It("should keep the old snapshot on fetch failure", func() {
		svc.mu.Lock()
		handle.entry.fetch = func(ctx context.Context, page int64) (*types.ListResult, error) {
			return nil, fmt.Errorf("backend down")
		}
		svc.mu.Unlock()
		handle.Refetch()

		Eventually(func() error {
			return handle.Snapshot().Err
		}, time.Second*5, time.Millisecond*10).ShouldNot(BeNil())
		Expect(len(handle.Snapshot().Items)).Should(Equal(5))
	})
})

var _ = Describe("TestOutOfOrderPages", func() {
	var (
		svc     *Service
		backend *fakeBackend
		handle  *Handle
		release func()
	)

	BeforeEach(func() {
		svc = New()
		backend = newFakeBackend(45, 20)
		release = backend.holdPage(1)

		var err error
		handle, err = svc.Query(Key{Kind: types.KindServices}, backend.fetch)
		Expect(err).Should(BeNil())
	})
	AfterEach(func() {
		handle.Close()
		svc.Close()
	})

	It("should apply late pages strictly in page order", func() {
		// restore a deep scroll position: pages 2 and 3 answer while
		// page 1 is still held back
		handle.PrefetchPages(3)
		Eventually(func() int {
			return backend.callCount(3)
		}, time.Second*5, time.Millisecond*10).Should(Equal(1))

		Consistently(func() int {
			return len(handle.Snapshot().Items)
		}, time.Millisecond*200, time.Millisecond*10).Should(Equal(0))
		Expect(handle.Snapshot().IsLoading).Should(BeTrue())

		release()
		Eventually(func() int {
			return len(handle.Snapshot().Items)
		}, time.Second*5, time.Millisecond*10).Should(Equal(45))

		snap := handle.Snapshot()
		for i, rec := range snap.Items {
			Expect(rec.ID()).Should(Equal(fmt.Sprintf("rec-%03d", i+1)))
		}
		Expect(snap.HasNextPage).Should(BeFalse())
	})
})

var _ = Describe("TestPushInvalidation", func() {
	var (
		svc     *Service
		backend *fakeBackend
		handle  *Handle
	)

	BeforeEach(func() {
		svc = New()
		backend = newFakeBackend(3, 20)

		var err error
		handle, err = svc.Query(Key{Kind: types.KindDomains}, backend.fetch)
		Expect(err).Should(BeNil())

		Eventually(func() int {
			return len(handle.Snapshot().Items)
		}, time.Second*5, time.Millisecond*10).Should(Equal(3))
	})
	AfterEach(func() {
		handle.Close()
		svc.Close()
	})

	It("should refetch watched entries of the changed kind", func() {
		backend.setRecords([]types.Record{
			{"id": "rec-001"}, {"id": "rec-002"}, {"id": "rec-003"}, {"id": "rec-004"},
		})
		events.PublishChanged(events.ActionTypeCreate, "test", types.KindDomains, "rec-004")

		Eventually(func() int {
			return len(handle.Snapshot().Items)
		}, time.Second*5, time.Millisecond*10).Should(Equal(4))
	})

	It("should ignore changes to other kinds", func() {
		before := backend.totalCalls()
		events.PublishChanged(events.ActionTypeUpdate, "test", types.KindTags, "rec-001")

		Consistently(func() int {
			return backend.totalCalls()
		}, time.Millisecond*200, time.Millisecond*10).Should(Equal(before))
	})
})

var _ = Describe("TestLocate", func() {
	var (
		svc     *Service
		backend *fakeBackend
		handle  *Handle
	)

	BeforeEach(func() {
		svc = New()
		backend = newFakeBackend(45, 20)

		var err error
		handle, err = svc.Query(Key{Kind: types.KindTasks}, backend.fetch)
		Expect(err).Should(BeNil())
	})
	AfterEach(func() {
		handle.Close()
		svc.Close()
	})

	It("should page forward until the record is loaded", func() {
		rec, err := handle.Locate(context.Background(), "rec-033")
		Expect(err).Should(BeNil())
		Expect(rec["name"]).Should(Equal("record 33"))
		// rec-033 sits on page 2, page 3 was never needed
		Expect(backend.callCount(3)).Should(Equal(0))
	})

	It("should report a benign miss after exhausting pages", func() {
		_, err := handle.Locate(context.Background(), "rec-999")
		Expect(err).Should(Equal(types.ErrNotFound))
		Expect(backend.callCount(3)).Should(Equal(1))
	})

	It("should give up when the context expires", func() {
		release := backend.holdPage(2)
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*200)
		defer cancel()
		_, err := handle.Locate(ctx, "rec-033")
		Expect(err).Should(Equal(context.DeadlineExceeded))
	})
})

var _ = Describe("TestEntrySharing", func() {
	var svc *Service

	BeforeEach(func() {
		svc = New(WithIdleEntries(1))
	})
	AfterEach(func() {
		svc.Close()
	})

	It("should share one entry between structurally equal keys", func() {
		backend := newFakeBackend(3, 20)

		// built differently: implicit vs explicit combinator, direction
		// spelled out vs defaulted
		keyA := Key{
			Kind:    types.KindServers,
			Filters: types.NewGroup("", types.NewCondition("status", types.OpEq, types.StringValue("running"))),
			Search:  "web",
			OrderBy: []types.OrderByItem{{Key: "name"}},
		}
		keyB := Key{
			Kind:    types.KindServers,
			Filters: types.And(types.NewCondition("status", types.OpEq, types.StringValue("running"))),
			Search:  " web ",
			OrderBy: []types.OrderByItem{{Key: "name", Direction: types.DirectionAsc}},
		}
		Expect(keyA.hash()).Should(Equal(keyB.hash()))

		h1, err := svc.Query(keyA, backend.fetch)
		Expect(err).Should(BeNil())
		defer h1.Close()
		h2, err := svc.Query(keyB, backend.fetch)
		Expect(err).Should(BeNil())
		defer h2.Close()

		Expect(svc.Len()).Should(Equal(1))
		Eventually(func() int {
			return backend.callCount(1)
		}, time.Second*5, time.Millisecond*10).Should(Equal(1))
	})

	It("should keep distinct entries for different queries", func() {
		backend := newFakeBackend(3, 20)

		h1, err := svc.Query(Key{Kind: types.KindServers}, backend.fetch)
		Expect(err).Should(BeNil())
		defer h1.Close()
		h2, err := svc.Query(Key{Kind: types.KindServers, Search: "web"}, backend.fetch)
		Expect(err).Should(BeNil())
		defer h2.Close()

		Expect(svc.Len()).Should(Equal(2))
	})

	It("should evict idle entries beyond the retention limit", func() {
		backend := newFakeBackend(3, 20)

		h1, err := svc.Query(Key{Kind: types.KindServers}, backend.fetch)
		Expect(err).Should(BeNil())
		h2, err := svc.Query(Key{Kind: types.KindServers, Search: "web"}, backend.fetch)
		Expect(err).Should(BeNil())

		h1.Close()
		h2.Close()

		// retention is 1, releasing the second handle evicts the first
		Expect(svc.Len()).Should(Equal(1))
	})

	It("should reject unknown kinds and nil fetchers", func() {
		_, err := svc.Query(Key{Kind: "widgets"}, newFakeBackend(1, 20).fetch)
		Expect(err).Should(Equal(types.ErrUnknownResource))

		_, err = svc.Query(Key{Kind: types.KindServers}, nil)
		Expect(err).Should(Equal(types.ErrUnsupported))
	})
})
