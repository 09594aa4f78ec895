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
	"strings"

	"github.com/opsdeck/console/pkg/types"
	"github.com/opsdeck/console/utils"
)

// Key identifies one distinct query. Page and limit are deliberately
// absent: a single key owns every page fetched for its query.
type Key struct {
	Kind    types.Kind
	Filters *types.FilterNode
	Search  string
	OrderBy []types.OrderByItem
}

// hashed is the canonical form fed to the deep hash. Building it from
// normalized structures (not raw strings) keeps structurally equal keys
// identical regardless of how their pieces were constructed.
type hashed struct {
	Kind    types.Kind
	Filters *types.FilterNode
	Search  string
	OrderBy []types.OrderByItem
}

func (k Key) hash() string {
	canon := hashed{
		Kind:    k.Kind,
		Filters: canonicalFilter(k.Filters),
		Search:  strings.TrimSpace(k.Search),
		OrderBy: canonicalOrder(k.OrderBy),
	}
	return string(k.Kind) + "/" + utils.ComputeStructHash(canon)
}

// canonicalFilter returns nil for inactive trees and fills in the
// implicit AND combinator so equal trees hash equally.
func canonicalFilter(n *types.FilterNode) *types.FilterNode {
	if !types.HasActiveFilters(n) {
		return nil
	}
	return canonicalNode(n)
}

func canonicalNode(n *types.FilterNode) *types.FilterNode {
	if n == nil {
		return nil
	}
	if n.IsCondition() {
		dup := *n
		return &dup
	}
	dup := types.FilterNode{Combinator: n.Comb()}
	for _, child := range n.Children {
		dup.Children = append(dup.Children, canonicalNode(child))
	}
	return &dup
}

func canonicalOrder(orderBy []types.OrderByItem) []types.OrderByItem {
	if len(orderBy) == 0 {
		return nil
	}
	canon := make([]types.OrderByItem, len(orderBy))
	for i, o := range orderBy {
		canon[i] = types.OrderByItem{Key: o.Key, Direction: o.Direction.Normalized()}
	}
	return canon
}
