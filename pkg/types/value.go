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

import (
	"encoding/json"
	"time"
)

type ValueKind string

const (
	ValueString  ValueKind = "string"
	ValueNumber  ValueKind = "number"
	ValueBool    ValueKind = "bool"
	ValueTime    ValueKind = "time"
	ValueRelDate ValueKind = "reldate"
	ValueNull    ValueKind = "null"
	ValueList    ValueKind = "list"
)

// RelativeDateToken is a symbolic date resolved to a concrete instant (or
// range) by the server at query time. The client carries the token only,
// so "today" always means today on the server.
type RelativeDateToken string

const (
	RelNow       RelativeDateToken = "now"
	RelToday     RelativeDateToken = "today"
	RelYesterday RelativeDateToken = "yesterday"
	RelTomorrow  RelativeDateToken = "tomorrow"
	RelThisWeek  RelativeDateToken = "thisWeek"
	RelLastWeek  RelativeDateToken = "lastWeek"
	RelThisMonth RelativeDateToken = "thisMonth"
	RelLastMonth RelativeDateToken = "lastMonth"
	RelThisYear  RelativeDateToken = "thisYear"
	RelLastYear  RelativeDateToken = "lastYear"
)

func (t RelativeDateToken) IsValid() bool {
	switch t {
	case RelNow, RelToday, RelYesterday, RelTomorrow, RelThisWeek,
		RelLastWeek, RelThisMonth, RelLastMonth, RelThisYear, RelLastYear:
		return true
	}
	return false
}

// Value is the closed union of literals a condition may hold. Exactly one
// variant is populated, selected by Kind.
type Value struct {
	Kind ValueKind

	Str   string
	Num   float64
	Bool  bool
	Time  time.Time
	Rel   RelativeDateToken
	Items []Value
}

func StringValue(s string) *Value       { return &Value{Kind: ValueString, Str: s} }
func NumberValue(n float64) *Value      { return &Value{Kind: ValueNumber, Num: n} }
func BoolValue(b bool) *Value           { return &Value{Kind: ValueBool, Bool: b} }
func TimeValue(t time.Time) *Value      { return &Value{Kind: ValueTime, Time: t} }
func NullValue() *Value                 { return &Value{Kind: ValueNull} }
func ListValue(items ...Value) *Value   { return &Value{Kind: ValueList, Items: items} }
func RelDateValue(t RelativeDateToken) *Value {
	return &Value{Kind: ValueRelDate, Rel: t}
}

func (v Value) Validate() error {
	switch v.Kind {
	case ValueString, ValueNumber, ValueBool, ValueTime, ValueNull:
		return nil
	case ValueRelDate:
		if !v.Rel.IsValid() {
			return ErrMalformedFilter
		}
		return nil
	case ValueList:
		for _, item := range v.Items {
			if item.Kind == ValueList {
				return ErrMalformedFilter
			}
			if err := item.Validate(); err != nil {
				return err
			}
		}
		return nil
	}
	return ErrMalformedFilter
}

func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueString:
		return v.Str == other.Str
	case ValueNumber:
		return v.Num == other.Num
	case ValueBool:
		return v.Bool == other.Bool
	case ValueTime:
		return v.Time.Equal(other.Time)
	case ValueRelDate:
		return v.Rel == other.Rel
	case ValueNull:
		return true
	case ValueList:
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Wire format: plain JSON literals for string/number/bool/null, arrays for
// lists, and single-key objects for the variants JSON cannot express on
// its own: {"$time": RFC3339} and {"$rel": token}.
type taggedValue struct {
	Time *string `json:"$time,omitempty"`
	Rel  *string `json:"$rel,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueNull:
		return []byte("null"), nil
	case ValueTime:
		s := v.Time.Format(time.RFC3339Nano)
		return json.Marshal(taggedValue{Time: &s})
	case ValueRelDate:
		s := string(v.Rel)
		return json.Marshal(taggedValue{Rel: &s})
	case ValueList:
		items := v.Items
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(items)
	}
	return nil, ErrMalformedFilter
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := string(data)
	if trimmed == "null" {
		*v = Value{Kind: ValueNull}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value{Kind: ValueString, Str: s}
		return nil
	case '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = Value{Kind: ValueList, Items: items}
		return nil
	case '{':
		var tagged taggedValue
		if err := json.Unmarshal(data, &tagged); err != nil {
			return err
		}
		if tagged.Time != nil {
			ts, err := time.Parse(time.RFC3339Nano, *tagged.Time)
			if err != nil {
				return err
			}
			*v = Value{Kind: ValueTime, Time: ts}
			return nil
		}
		if tagged.Rel != nil {
			token := RelativeDateToken(*tagged.Rel)
			if !token.IsValid() {
				return ErrMalformedFilter
			}
			*v = Value{Kind: ValueRelDate, Rel: token}
			return nil
		}
		return ErrMalformedFilter
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Value{Kind: ValueBool, Bool: b}
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = Value{Kind: ValueNumber, Num: n}
	return nil
}
