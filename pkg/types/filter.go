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

// MaxFilterDepth bounds the nesting of filter trees. Deeper trees are
// rejected by Validate and dropped by the URL codec.
const MaxFilterDepth = 16

type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpIsNull   Operator = "isnull"
	OpNotNull  Operator = "notnull"
)

func (op Operator) IsValid() bool {
	switch op {
	case OpEq, OpNeq, OpContains, OpIn, OpGte, OpLte, OpIsNull, OpNotNull:
		return true
	}
	return false
}

func (op Operator) NeedsValue() bool {
	return op != OpIsNull && op != OpNotNull
}

// FilterNode is one node of a filter tree: either a condition on a single
// field or a group combining child nodes with AND/OR. A node with a
// non-empty Field is a condition, everything else is a group.
type FilterNode struct {
	Combinator Combinator    `json:"combinator,omitempty"`
	Children   []*FilterNode `json:"children,omitempty"`

	Field    string   `json:"field,omitempty"`
	Operator Operator `json:"operator,omitempty"`
	Value    *Value   `json:"value,omitempty"`
}

func NewCondition(field string, op Operator, val *Value) *FilterNode {
	return &FilterNode{Field: field, Operator: op, Value: val}
}

func NewGroup(comb Combinator, children ...*FilterNode) *FilterNode {
	return &FilterNode{Combinator: comb, Children: children}
}

func And(children ...*FilterNode) *FilterNode {
	return NewGroup(CombinatorAnd, children...)
}

func Or(children ...*FilterNode) *FilterNode {
	return NewGroup(CombinatorOr, children...)
}

func (n *FilterNode) IsCondition() bool {
	return n != nil && n.Field != ""
}

func (n *FilterNode) IsGroup() bool {
	return n != nil && n.Field == ""
}

// Comb returns the effective combinator. A group that arrived without an
// explicit combinator, e.g. a bare condition list from an old link, is AND.
func (n *FilterNode) Comb() Combinator {
	if n.Combinator == "" {
		return CombinatorAnd
	}
	return n.Combinator
}

// HasActiveFilters reports whether the tree contains at least one
// condition. Groups holding only empty groups are inactive, and so is a
// nil tree.
func HasActiveFilters(n *FilterNode) bool {
	if n == nil {
		return false
	}
	if n.IsCondition() {
		return true
	}
	for _, child := range n.Children {
		if HasActiveFilters(child) {
			return true
		}
	}
	return false
}

// FilterEqual compares two trees structurally. Child order inside a group
// is significant, it feeds the cache key and the serialized link.
func FilterEqual(a, b *FilterNode) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.IsCondition() != b.IsCondition() {
		return false
	}
	if a.IsCondition() {
		if a.Field != b.Field || a.Operator != b.Operator {
			return false
		}
		if (a.Value == nil) != (b.Value == nil) {
			return false
		}
		return a.Value == nil || a.Value.Equal(*b.Value)
	}
	if a.Comb() != b.Comb() || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !FilterEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Validate checks structural sanity: bounded depth, known operators,
// values present where the operator needs one.
func (n *FilterNode) Validate() error {
	return n.validate(1)
}

func (n *FilterNode) validate(depth int) error {
	if n == nil {
		return nil
	}
	if depth > MaxFilterDepth {
		return ErrFilterTooDeep
	}
	if n.IsCondition() {
		if !n.Operator.IsValid() {
			return ErrMalformedFilter
		}
		if n.Operator.NeedsValue() && n.Value == nil {
			return ErrMalformedFilter
		}
		if n.Value != nil {
			if err := n.Value.Validate(); err != nil {
				return err
			}
		}
		if len(n.Children) != 0 {
			return ErrMalformedFilter
		}
		return nil
	}
	if n.Combinator != "" && n.Combinator != CombinatorAnd && n.Combinator != CombinatorOr {
		return ErrMalformedFilter
	}
	if n.Operator != "" || n.Value != nil {
		return ErrMalformedFilter
	}
	for _, child := range n.Children {
		if err := child.validate(depth + 1); err != nil {
			return err
		}
	}
	return nil
}
