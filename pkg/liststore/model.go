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
	"time"

	"github.com/opsdeck/console/pkg/types"
)

// ResourceRow is the storage model behind every console list. All kinds
// share one table, the console's list fields are uniform enough for the
// development fixture.
type ResourceRow struct {
	ID          string `gorm:"column:id;primaryKey"`
	Kind        string `gorm:"column:kind;index:idx_resource_kind"`
	Name        string `gorm:"column:name;index:idx_resource_name"`
	Status      string `gorm:"column:status"`
	Environment string `gorm:"column:environment"`
	Owner       string `gorm:"column:owner"`
	Priority    int64  `gorm:"column:priority"`
	URL         string `gorm:"column:url"`
	Username    string `gorm:"column:username"`
	Note        string `gorm:"column:note"`
	Archived    bool   `gorm:"column:archived"`

	DueAt     *time.Time `gorm:"column:due_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (r ResourceRow) TableName() string {
	return "resources"
}

func (r ResourceRow) ToRecord() types.Record {
	rec := types.Record{
		"id":          r.ID,
		"name":        r.Name,
		"status":      r.Status,
		"environment": r.Environment,
		"owner":       r.Owner,
		"priority":    r.Priority,
		"url":         r.URL,
		"username":    r.Username,
		"note":        r.Note,
		"archived":    r.Archived,
		"created_at":  r.CreatedAt.Format(time.RFC3339),
		"updated_at":  r.UpdatedAt.Format(time.RFC3339),
	}
	if r.DueAt != nil {
		rec["due_at"] = r.DueAt.Format(time.RFC3339)
	}
	return rec
}

// filterableFields maps field names the API accepts to columns and the
// operators legal for them, it is also what the filter-metadata
// endpoint serves.
type fieldSpec struct {
	Column    string
	Type      types.FieldType
	Operators []types.Operator
}

var (
	stringOps = []types.Operator{types.OpEq, types.OpNeq, types.OpContains, types.OpIn, types.OpIsNull, types.OpNotNull}
	enumOps   = []types.Operator{types.OpEq, types.OpNeq, types.OpIn}
	numberOps = []types.Operator{types.OpEq, types.OpNeq, types.OpGte, types.OpLte, types.OpIn}
	boolOps   = []types.Operator{types.OpEq, types.OpNeq}
	dateOps   = []types.Operator{types.OpEq, types.OpGte, types.OpLte, types.OpIsNull, types.OpNotNull}

	filterableFields = map[string]fieldSpec{
		"name":        {Column: "name", Type: types.FieldString, Operators: stringOps},
		"status":      {Column: "status", Type: types.FieldEnum, Operators: enumOps},
		"environment": {Column: "environment", Type: types.FieldEnum, Operators: enumOps},
		"owner":       {Column: "owner", Type: types.FieldString, Operators: stringOps},
		"priority":    {Column: "priority", Type: types.FieldNumber, Operators: numberOps},
		"url":         {Column: "url", Type: types.FieldString, Operators: stringOps},
		"username":    {Column: "username", Type: types.FieldString, Operators: stringOps},
		"note":        {Column: "note", Type: types.FieldString, Operators: stringOps},
		"archived":    {Column: "archived", Type: types.FieldBoolean, Operators: boolOps},
		"due_at":      {Column: "due_at", Type: types.FieldDate, Operators: dateOps},
		"created_at":  {Column: "created_at", Type: types.FieldDate, Operators: dateOps},
		"updated_at":  {Column: "updated_at", Type: types.FieldDate, Operators: dateOps},
	}

	fieldOrder = []string{
		"name", "status", "environment", "owner", "priority", "url",
		"username", "note", "archived", "due_at", "created_at", "updated_at",
	}
)

func Metadata() types.FilterMetadata {
	meta := types.FilterMetadata{}
	for _, name := range fieldOrder {
		spec := filterableFields[name]
		meta.Fields = append(meta.Fields, types.FieldMetadata{
			Name:      name,
			Type:      spec.Type,
			Operators: spec.Operators,
		})
	}
	return meta
}
