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

package console

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/opsdeck/console/pkg/apiclient"
	"github.com/opsdeck/console/pkg/query"
	"github.com/opsdeck/console/pkg/querycache"
	"github.com/opsdeck/console/pkg/types"
	"github.com/opsdeck/console/pkg/urlstate"
)

var _ = Describe("TestSessionSearch", func() {
	var (
		svc     *querycache.Service
		backend *echoBackend
		session *Session
	)

	BeforeEach(func() {
		svc = querycache.New()
		backend = newEchoBackend()

		var err error
		session, err = NewSession(svc, apiclient.New(backend.srv.URL), types.KindServers,
			WithSearchDelay(time.Millisecond*50), WithPageLimit(20))
		Expect(err).Should(BeNil())
	})
	AfterEach(func() {
		session.Close()
		svc.Close()
		backend.close()
	})

	It("should start on the unfiltered list", func() {
		Eventually(func() int {
			return len(session.Handle().Snapshot().Items)
		}, time.Second*5, time.Millisecond*10).Should(Equal(1))
		Expect(backend.callCount("")).Should(Equal(1))
	})

	It("should collapse rapid keystrokes into one query", func() {
		session.SetSearch("d")
		session.SetSearch("db")
		session.SetSearch("db-01")

		Eventually(func() string {
			items := session.Handle().Snapshot().Items
			if len(items) == 0 {
				return ""
			}
			return items[0].ID()
		}, time.Second*5, time.Millisecond*10).Should(Equal("rec-db-01"))

		Expect(backend.callCount("d")).Should(Equal(0))
		Expect(backend.callCount("db")).Should(Equal(0))
		Expect(backend.callCount("db-01")).Should(Equal(1))
	})

	It("should flush pending input on demand", func() {
		session.SetSearch("web")
		session.FlushSearch()

		Eventually(func() int {
			return backend.callCount("web")
		}, time.Second*5, time.Millisecond*10).Should(Equal(1))
	})

	It("should reuse the cache entry when search returns to a known state", func() {
		session.SetSearch("web")
		session.FlushSearch()
		Eventually(func() int {
			return backend.callCount("web")
		}, time.Second*5, time.Millisecond*10).Should(Equal(1))

		session.SetSearch("")
		session.FlushSearch()
		session.SetSearch("web")
		session.FlushSearch()

		Eventually(func() string {
			items := session.Handle().Snapshot().Items
			if len(items) == 0 {
				return ""
			}
			return items[0].ID()
		}, time.Second*5, time.Millisecond*10).Should(Equal("rec-web"))
		// both states were still cached, no second fetch for either
		Expect(backend.callCount("web")).Should(Equal(1))
		Expect(backend.callCount("")).Should(Equal(1))
	})
})

var _ = Describe("TestSessionState", func() {
	var (
		svc     *querycache.Service
		backend *echoBackend
		session *Session
	)

	BeforeEach(func() {
		svc = querycache.New()
		backend = newEchoBackend()

		var err error
		session, err = NewSession(svc, apiclient.New(backend.srv.URL), types.KindTasks)
		Expect(err).Should(BeNil())
	})
	AfterEach(func() {
		session.Close()
		svc.Close()
		backend.close()
	})

	It("should swap subscriptions when filters change", func() {
		first := session.Handle()
		Expect(session.SetFilters(types.NewCondition("status", types.OpEq, types.StringValue("open")))).Should(BeNil())
		Expect(session.Handle()).ShouldNot(BeIdenticalTo(first))

		// equal tree, no resubscription
		second := session.Handle()
		Expect(session.SetFilters(types.NewCondition("status", types.OpEq, types.StringValue("open")))).Should(BeNil())
		Expect(session.Handle()).Should(BeIdenticalTo(second))
	})

	It("should round state through a shareable link", func() {
		Expect(session.SetFilters(types.NewCondition("owner", types.OpEq, types.StringValue("core")))).Should(BeNil())
		Expect(session.SetOrder([]types.OrderByItem{{Key: "name", Direction: types.DirectionDesc}}, nil)).Should(BeNil())

		link := session.Link("https://console.local/tasks")

		restored, err := NewSession(svc, apiclient.New(backend.srv.URL), types.KindTasks)
		Expect(err).Should(BeNil())
		defer restored.Close()
		Expect(restored.RestoreLink(link)).Should(BeNil())

		state := restored.State()
		Expect(types.FilterEqual(state.Filters, session.State().Filters)).Should(BeTrue())
		Expect(types.OrderByEqual(state.OrderBy, session.State().OrderBy)).Should(BeTrue())
	})

	It("should reject filters that cannot compose", func() {
		bad := types.NewCondition("status", "regex", types.StringValue("x"))
		Expect(session.SetFilters(bad)).ShouldNot(BeNil())
	})

	It("should drop restored filters on fields the metadata no longer serves", func() {
		stale := types.And(
			types.NewCondition("status", types.OpEq, types.StringValue("open")),
			types.NewCondition("decommissioned", types.OpEq, types.StringValue("yes")),
		)
		link := urlstate.BuildLink("https://console.local/tasks", query.State{Filters: stale})

		Expect(session.RestoreLink(link)).Should(BeNil())
		want := types.And(types.NewCondition("status", types.OpEq, types.StringValue("open")))
		Expect(types.FilterEqual(session.State().Filters, want)).Should(BeTrue())
	})

	It("should degrade a link filtering only removed fields to the plain list", func() {
		Eventually(func() int {
			return len(session.Handle().Snapshot().Items)
		}, time.Second*5, time.Millisecond*10).Should(Equal(1))

		stale := types.NewCondition("decommissioned", types.OpEq, types.StringValue("yes"))
		link := urlstate.BuildLink("https://console.local/tasks", query.State{Filters: stale})

		Expect(session.RestoreLink(link)).Should(BeNil())
		Expect(session.State().Filters).Should(BeNil())
		// same key as the unfiltered list, served from cache
		Expect(backend.callCount("")).Should(Equal(1))
		Expect(session.Handle().Snapshot().Items).Should(HaveLen(1))
	})

	It("should keep inactive filter trees on the simple path", func() {
		Eventually(func() int {
			return len(session.Handle().Snapshot().Items)
		}, time.Second*5, time.Millisecond*10).Should(Equal(1))

		Expect(session.SetFilters(types.And())).Should(BeNil())
		Expect(session.Handle().Snapshot().Items).Should(HaveLen(1))
		Expect(backend.callCount("")).Should(Equal(1))
	})
})
