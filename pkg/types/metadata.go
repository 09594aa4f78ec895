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

package types

type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldEnum    FieldType = "enum"
)

// FieldMetadata describes one filterable field of a resource and the
// operators legal for it, as served by the filter-metadata endpoint.
type FieldMetadata struct {
	Name      string     `json:"name"`
	Type      FieldType  `json:"type"`
	Operators []Operator `json:"operators"`
	Values    []string   `json:"values,omitempty"`
}

type FilterMetadata struct {
	Fields []FieldMetadata `json:"fields"`
}

func (m FilterMetadata) Field(name string) (FieldMetadata, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldMetadata{}, false
}

func (m FilterMetadata) Allows(field string, op Operator) bool {
	f, ok := m.Field(field)
	if !ok {
		return false
	}
	for _, allowed := range f.Operators {
		if allowed == op {
			return true
		}
	}
	return false
}

// PruneFilter returns the tree with every condition the metadata no
// longer allows removed. Groups left without children collapse to nil.
// Restoring a stale link goes through here so a filter on a removed
// field degrades to inactive state instead of failing the query.
func (m FilterMetadata) PruneFilter(n *FilterNode) *FilterNode {
	if n == nil {
		return nil
	}
	if n.IsCondition() {
		if m.Allows(n.Field, n.Operator) {
			return n
		}
		return nil
	}
	kept := make([]*FilterNode, 0, len(n.Children))
	for _, child := range n.Children {
		if pruned := m.PruneFilter(child); pruned != nil {
			kept = append(kept, pruned)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &FilterNode{Combinator: n.Combinator, Children: kept}
}

// ValidateFilter checks every condition of the tree against the metadata.
// It runs once, at the boundary where a filter is built, before a request
// is issued. The filter model itself stays metadata-agnostic.
func (m FilterMetadata) ValidateFilter(n *FilterNode) error {
	if n == nil {
		return nil
	}
	if n.IsCondition() {
		if !m.Allows(n.Field, n.Operator) {
			return ErrMalformedFilter
		}
		return nil
	}
	for _, child := range n.Children {
		if err := m.ValidateFilter(child); err != nil {
			return err
		}
	}
	return nil
}
