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
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/opsdeck/console/pkg/types"
)

type ConvertContext struct {
	Buffer strings.Builder
	Args   []interface{}
	Now    time.Time
}

func NewConvertContext(now time.Time) *ConvertContext {
	return &ConvertContext{Args: []interface{}{}, Now: now}
}

// Convert renders a filter tree as a parameterized WHERE fragment.
func Convert(ctx *ConvertContext, node *types.FilterNode) error {
	if node == nil {
		return nil
	}
	if node.IsCondition() {
		return convertCondition(ctx, node)
	}
	return convertGroup(ctx, node)
}

func convertGroup(ctx *ConvertContext, node *types.FilterNode) error {
	if len(node.Children) == 0 {
		return nil
	}
	joiner := " AND "
	if node.Comb() == types.CombinatorOr {
		joiner = " OR "
	}

	ctx.Buffer.WriteString("(")
	for i, child := range node.Children {
		if i > 0 {
			ctx.Buffer.WriteString(joiner)
		}
		if err := Convert(ctx, child); err != nil {
			return err
		}
	}
	ctx.Buffer.WriteString(")")
	return nil
}

// Conversion failures all wrap ErrMalformedFilter, the API layer maps
// them to a client error rather than a server one.
func convertCondition(ctx *ConvertContext, node *types.FilterNode) error {
	spec, ok := filterableFields[node.Field]
	if !ok {
		return errors.Wrapf(types.ErrMalformedFilter, "unknown filter field %s", node.Field)
	}
	col := spec.Column

	switch node.Operator {
	case types.OpIsNull:
		ctx.Buffer.WriteString(col + " IS NULL")
		return nil
	case types.OpNotNull:
		ctx.Buffer.WriteString(col + " IS NOT NULL")
		return nil
	}

	if node.Value == nil {
		return errors.Wrapf(types.ErrMalformedFilter, "operator %s needs a value on field %s", node.Operator, node.Field)
	}
	val := *node.Value

	if val.Kind == types.ValueRelDate {
		return convertRelativeDate(ctx, col, node.Operator, val.Rel)
	}

	switch node.Operator {
	case types.OpEq:
		ctx.Buffer.WriteString(col + " = ?")
		return appendArg(ctx, val)
	case types.OpNeq:
		ctx.Buffer.WriteString(col + " <> ?")
		return appendArg(ctx, val)
	case types.OpGte:
		ctx.Buffer.WriteString(col + " >= ?")
		return appendArg(ctx, val)
	case types.OpLte:
		ctx.Buffer.WriteString(col + " <= ?")
		return appendArg(ctx, val)
	case types.OpContains:
		if val.Kind != types.ValueString {
			return errors.Wrapf(types.ErrMalformedFilter, "contains needs a string value on field %s", node.Field)
		}
		ctx.Buffer.WriteString(col + " LIKE ?")
		ctx.Args = append(ctx.Args, "%"+val.Str+"%")
		return nil
	case types.OpIn:
		if val.Kind != types.ValueList {
			return errors.Wrapf(types.ErrMalformedFilter, "in needs a list value on field %s", node.Field)
		}
		if len(val.Items) == 0 {
			// empty in-list matches nothing
			ctx.Buffer.WriteString("1 = 0")
			return nil
		}
		placeholders := make([]string, len(val.Items))
		for i, item := range val.Items {
			placeholders[i] = "?"
			if err := appendArg(ctx, item); err != nil {
				return err
			}
		}
		ctx.Buffer.WriteString(col + " IN (" + strings.Join(placeholders, ",") + ")")
		return nil
	}
	return errors.Wrapf(types.ErrMalformedFilter, "unsupported operator %s", node.Operator)
}

// Relative date conditions compare against the token's resolved range:
// equality means "within the range", gte/lte compare to its edges.
func convertRelativeDate(ctx *ConvertContext, col string, op types.Operator, token types.RelativeDateToken) error {
	start, end := ResolveRelativeRange(token, ctx.Now)
	switch op {
	case types.OpEq:
		ctx.Buffer.WriteString("(" + col + " >= ? AND " + col + " < ?)")
		ctx.Args = append(ctx.Args, start, end)
		return nil
	case types.OpGte:
		ctx.Buffer.WriteString(col + " >= ?")
		ctx.Args = append(ctx.Args, start)
		return nil
	case types.OpLte:
		ctx.Buffer.WriteString(col + " < ?")
		ctx.Args = append(ctx.Args, end)
		return nil
	}
	return errors.Wrapf(types.ErrMalformedFilter, "operator %s not supported with relative dates", op)
}

func appendArg(ctx *ConvertContext, val types.Value) error {
	switch val.Kind {
	case types.ValueString:
		ctx.Args = append(ctx.Args, val.Str)
	case types.ValueNumber:
		ctx.Args = append(ctx.Args, val.Num)
	case types.ValueBool:
		ctx.Args = append(ctx.Args, val.Bool)
	case types.ValueTime:
		ctx.Args = append(ctx.Args, val.Time)
	case types.ValueNull:
		ctx.Args = append(ctx.Args, nil)
	default:
		return errors.Wrapf(types.ErrMalformedFilter, "unsupported literal kind %s", val.Kind)
	}
	return nil
}
