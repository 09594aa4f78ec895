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

type Direction string

const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// Normalized maps anything that is not "desc" to "asc".
func (d Direction) Normalized() Direction {
	if d == DirectionDesc {
		return DirectionDesc
	}
	return DirectionAsc
}

// OrderByItem is one sort key. Sequence position is significant: the
// first item is the primary key, the second breaks its ties, and so on.
type OrderByItem struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// GroupByItem is one grouping key. Direction is optional and defaults to
// ascending when the composer folds it into the order sequence.
type GroupByItem struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction,omitempty"`
}

func OrderByEqual(a, b []OrderByItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || a[i].Direction.Normalized() != b[i].Direction.Normalized() {
			return false
		}
	}
	return true
}

func GroupByEqual(a, b []GroupByItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || a[i].Direction.Normalized() != b[i].Direction.Normalized() {
			return false
		}
	}
	return true
}
