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

package liststore

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/opsdeck/console/pkg/types"
)

var _ = Describe("TestStoreList", func() {
	var store = buildNewStore("test_list.db")
	ctx := context.TODO()

	Context("list seeded servers", func() {
		It("seed should be succeed", func() {
			for i := 1; i <= 45; i++ {
				status := "running"
				if i%3 == 0 {
					status = "stopped"
				}
				Expect(store.Create(ctx, types.KindServers, ResourceRow{
					ID:          fmt.Sprintf("srv-%03d", i),
					Name:        fmt.Sprintf("server-%03d", i),
					Status:      status,
					Environment: "prod",
					Owner:       "core",
					Priority:    int64(i % 5),
				})).Should(BeNil())
			}
		})
		It("first page should hold the limit", func() {
			result, err := store.List(ctx, types.KindServers, types.AdvancedFilterRequest{Page: 1, Limit: 20})
			Expect(err).Should(BeNil())
			Expect(len(result.Data)).Should(Equal(20))
			Expect(result.Pagination.Total).Should(Equal(int64(45)))
			Expect(result.Pagination.TotalPages).Should(Equal(int64(3)))
			Expect(result.Pagination.HasNext()).Should(BeTrue())
		})
		It("last page should be short", func() {
			result, err := store.List(ctx, types.KindServers, types.AdvancedFilterRequest{Page: 3, Limit: 20})
			Expect(err).Should(BeNil())
			Expect(len(result.Data)).Should(Equal(5))
			Expect(result.Pagination.HasNext()).Should(BeFalse())
		})
		It("filter should narrow the result", func() {
			result, err := store.List(ctx, types.KindServers, types.AdvancedFilterRequest{
				Filters: types.And(
					types.NewCondition("status", types.OpEq, types.StringValue("stopped")),
					types.NewCondition("priority", types.OpGte, types.NumberValue(3)),
				),
				Page:  1,
				Limit: 50,
			})
			Expect(err).Should(BeNil())
			Expect(len(result.Data)).Should(BeNumerically(">", 0))
			for _, rec := range result.Data {
				Expect(rec["status"]).Should(Equal("stopped"))
				Expect(rec["priority"]).Should(BeNumerically(">=", 3))
			}
		})
		It("search should match name substrings", func() {
			result, err := store.List(ctx, types.KindServers, types.AdvancedFilterRequest{
				Search: "server-04",
				Page:   1,
				Limit:  50,
			})
			Expect(err).Should(BeNil())
			// server-040 .. server-045
			Expect(len(result.Data)).Should(Equal(6))
		})
		It("order should honor key and direction", func() {
			result, err := store.List(ctx, types.KindServers, types.AdvancedFilterRequest{
				OrderBy: []types.OrderByItem{
					{Key: "priority", Direction: types.DirectionDesc},
					{Key: "name", Direction: types.DirectionAsc},
				},
				Page:  1,
				Limit: 10,
			})
			Expect(err).Should(BeNil())
			Expect(result.Data[0]["priority"]).Should(Equal(int64(4)))
			last := result.Data[0]["priority"].(int64)
			for _, rec := range result.Data {
				Expect(rec["priority"].(int64)).Should(BeNumerically("<=", last))
				last = rec["priority"].(int64)
			}
		})
		It("kinds should not leak into each other", func() {
			result, err := store.List(ctx, types.KindTags, types.AdvancedFilterRequest{Page: 1, Limit: 10})
			Expect(err).Should(BeNil())
			Expect(len(result.Data)).Should(Equal(0))
		})
		It("invalid requests should be rejected", func() {
			_, err := store.List(ctx, "widgets", types.AdvancedFilterRequest{Page: 1, Limit: 10})
			Expect(err).Should(Equal(types.ErrUnknownResource))

			_, err = store.List(ctx, types.KindServers, types.AdvancedFilterRequest{Page: 0, Limit: 10})
			Expect(err).Should(Equal(types.ErrInvalidPagination))
		})
		It("unknown order and filter keys should be malformed, not fatal", func() {
			_, err := store.List(ctx, types.KindServers, types.AdvancedFilterRequest{
				OrderBy: []types.OrderByItem{{Key: "rack", Direction: types.DirectionAsc}},
				Page:    1,
				Limit:   10,
			})
			Expect(err).Should(MatchError(types.ErrMalformedFilter))

			_, err = store.List(ctx, types.KindServers, types.AdvancedFilterRequest{
				Filters: types.NewCondition("rack", types.OpEq, types.StringValue("b2")),
				Page:    1,
				Limit:   10,
			})
			Expect(err).Should(MatchError(types.ErrMalformedFilter))
		})
	})

	Context("record lifecycle", func() {
		It("update and delete should round through", func() {
			row, err := store.Get(ctx, types.KindServers, "srv-001")
			Expect(err).Should(BeNil())

			row.Owner = "platform"
			Expect(store.Update(ctx, types.KindServers, *row)).Should(BeNil())

			row, err = store.Get(ctx, types.KindServers, "srv-001")
			Expect(err).Should(BeNil())
			Expect(row.Owner).Should(Equal("platform"))

			Expect(store.Delete(ctx, types.KindServers, "srv-001")).Should(BeNil())
			_, err = store.Get(ctx, types.KindServers, "srv-001")
			Expect(err).Should(Equal(types.ErrNotFound))
		})
		It("missing records should be reported", func() {
			Expect(store.Delete(ctx, types.KindServers, "srv-999")).Should(Equal(types.ErrNotFound))
		})
	})
})

var _ = Describe("TestStoreSeedAndMetadata", func() {
	var store = buildNewStore("test_seed.db")
	ctx := context.TODO()

	It("seed should fill every kind", func() {
		Expect(store.Seed(ctx, 10)).Should(BeNil())
		for _, kind := range types.AllKinds() {
			total, err := store.Count(ctx, kind)
			Expect(err).Should(BeNil())
			Expect(total).Should(Equal(int64(10)))
		}
	})
	It("metadata should allow validating filters", func() {
		meta, err := store.FilterMetadata(ctx, types.KindServers)
		Expect(err).Should(BeNil())

		good := types.NewCondition("status", types.OpEq, types.StringValue("running"))
		Expect(meta.ValidateFilter(good)).Should(BeNil())

		bad := types.NewCondition("status", types.OpContains, types.StringValue("run"))
		Expect(meta.ValidateFilter(bad)).ShouldNot(BeNil())
	})
})
