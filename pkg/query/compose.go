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

// Package query composes user-selected filter, search, order and group
// state into the single canonical request shape the list endpoint accepts.
package query

import (
	"strings"

	"github.com/opsdeck/console/pkg/types"
)

// State is the raw query state a list page holds before composition.
type State struct {
	Filters *types.FilterNode
	Search  string
	OrderBy []types.OrderByItem
	GroupBy []types.GroupByItem
}

// UseAdvancedFiltering decides between the simple query path and the
// advanced one. The two paths use different request shapes and different
// cache entries and must never be mixed for one visible list.
func UseAdvancedFiltering(s State) bool {
	return types.HasActiveFilters(s.Filters) || len(s.OrderBy) > 0 || len(s.GroupBy) > 0
}

// BuildRequest produces the canonical request. Group keys are prepended
// to the effective order, each with the group's direction (asc when
// unspecified), so rows stay contiguous within a group. User order
// entries whose key a group already claims are dropped.
func BuildRequest(s State, page, limit int64) (types.AdvancedFilterRequest, error) {
	req := types.AdvancedFilterRequest{
		Filters: s.Filters,
		Search:  strings.TrimSpace(s.Search),
		OrderBy: EffectiveOrder(s.OrderBy, s.GroupBy),
		Page:    page,
		Limit:   limit,
	}
	if !types.HasActiveFilters(req.Filters) {
		req.Filters = nil
	}
	if err := req.Validate(); err != nil {
		return types.AdvancedFilterRequest{}, err
	}
	return req, nil
}

// EffectiveOrder folds groupBy into orderBy: group keys first in group
// order, then surviving user keys in user order.
func EffectiveOrder(orderBy []types.OrderByItem, groupBy []types.GroupByItem) []types.OrderByItem {
	if len(groupBy) == 0 && len(orderBy) == 0 {
		return nil
	}

	grouped := make(map[string]struct{}, len(groupBy))
	effective := make([]types.OrderByItem, 0, len(groupBy)+len(orderBy))
	for _, g := range groupBy {
		if _, seen := grouped[g.Key]; seen {
			continue
		}
		grouped[g.Key] = struct{}{}
		effective = append(effective, types.OrderByItem{
			Key:       g.Key,
			Direction: g.Direction.Normalized(),
		})
	}
	for _, o := range orderBy {
		if _, claimed := grouped[o.Key]; claimed {
			continue
		}
		effective = append(effective, types.OrderByItem{
			Key:       o.Key,
			Direction: o.Direction.Normalized(),
		})
	}
	return effective
}
