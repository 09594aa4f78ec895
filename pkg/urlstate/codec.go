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

// Package urlstate maps query state to and from shareable URL parameters.
//
// Parsing is deliberately lenient: a stale or hand-edited link must
// degrade to the unfiltered list, never to an error page. Anything
// unparseable is dropped and its piece of state resolves to inactive.
package urlstate

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/opsdeck/console/pkg/query"
	"github.com/opsdeck/console/pkg/types"
)

const (
	paramFilters = "filters"
	paramSearch  = "search"
	paramOrder   = "order"
	paramGroup   = "group"
)

// Serialize encodes the state into URL parameters. Absent state pieces
// produce absent parameters, never empty-string placeholders, so old
// links without them keep deserializing to "no filter".
func Serialize(s query.State) url.Values {
	params := url.Values{}

	if types.HasActiveFilters(s.Filters) {
		if raw, err := json.Marshal(s.Filters); err == nil {
			params.Set(paramFilters, base64.RawURLEncoding.EncodeToString(raw))
		}
	}
	if search := strings.TrimSpace(s.Search); search != "" {
		params.Set(paramSearch, search)
	}
	if len(s.OrderBy) > 0 {
		parts := make([]string, 0, len(s.OrderBy))
		for _, o := range s.OrderBy {
			parts = append(parts, o.Key+":"+string(o.Direction.Normalized()))
		}
		params.Set(paramOrder, strings.Join(parts, ","))
	}
	if len(s.GroupBy) > 0 {
		parts := make([]string, 0, len(s.GroupBy))
		for _, g := range s.GroupBy {
			if g.Direction == "" {
				parts = append(parts, g.Key)
				continue
			}
			parts = append(parts, g.Key+":"+string(g.Direction.Normalized()))
		}
		params.Set(paramGroup, strings.Join(parts, ","))
	}
	return params
}

// Deserialize decodes URL parameters back into query state. Malformed
// pieces are dropped silently.
func Deserialize(params url.Values) query.State {
	s := query.State{Search: strings.TrimSpace(params.Get(paramSearch))}

	if encoded := params.Get(paramFilters); encoded != "" {
		s.Filters = decodeFilters(encoded)
	}
	if raw := params.Get(paramOrder); raw != "" {
		s.OrderBy = decodeOrder(raw)
	}
	if raw := params.Get(paramGroup); raw != "" {
		s.GroupBy = decodeGroup(raw)
	}
	return s
}

// BuildLink renders the state as a shareable link under base.
func BuildLink(base string, s query.State) string {
	params := Serialize(s)
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

// ParseLink is the inverse of BuildLink. A link that does not parse at
// all yields the empty state.
func ParseLink(link string) query.State {
	u, err := url.Parse(link)
	if err != nil {
		return query.State{}
	}
	return Deserialize(u.Query())
}

func decodeFilters(encoded string) *types.FilterNode {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	node := &types.FilterNode{}
	if err = json.Unmarshal(raw, node); err != nil {
		return nil
	}
	if err = node.Validate(); err != nil {
		return nil
	}
	if !types.HasActiveFilters(node) {
		return nil
	}
	return node
}

func decodeOrder(raw string) []types.OrderByItem {
	var items []types.OrderByItem
	for _, part := range strings.Split(raw, ",") {
		key, direction, ok := splitOrderPart(part)
		if !ok {
			continue
		}
		items = append(items, types.OrderByItem{Key: key, Direction: direction})
	}
	return items
}

func decodeGroup(raw string) []types.GroupByItem {
	var items []types.GroupByItem
	for _, part := range strings.Split(raw, ",") {
		key, direction, ok := splitOrderPart(part)
		if !ok {
			continue
		}
		items = append(items, types.GroupByItem{Key: key, Direction: direction})
	}
	return items
}

func splitOrderPart(part string) (string, types.Direction, bool) {
	part = strings.TrimSpace(part)
	if part == "" {
		return "", "", false
	}
	key, rawDir, found := strings.Cut(part, ":")
	if key == "" {
		return "", "", false
	}
	if !found {
		return key, types.DirectionAsc, true
	}
	switch types.Direction(rawDir) {
	case types.DirectionAsc, types.DirectionDesc:
		return key, types.Direction(rawDir), true
	default:
		// unknown direction, drop the whole entry
		return "", "", false
	}
}
