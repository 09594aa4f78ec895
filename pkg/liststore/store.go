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

// Package liststore backs the development console API with a sqlite
// store speaking the list contract: filter trees, free-text search,
// multi-key order and pagination.
package liststore

import (
	"context"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/opsdeck/console/pkg/events"
	"github.com/opsdeck/console/pkg/types"
	"github.com/opsdeck/console/utils/logger"
)

const eventSource = "liststore"

type Store struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewStore opens (or creates) the sqlite database at path. Use ":memory:"
// for throwaway instances.
func NewStore(path string) (*Store, error) {
	dbEntity, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if err = dbEntity.AutoMigrate(&ResourceRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate resources table")
	}
	return &Store{db: dbEntity, logger: logger.NewLogger("liststore")}, nil
}

// List serves one page of the kind's records for the canonical request.
func (s *Store) List(ctx context.Context, kind types.Kind, req types.AdvancedFilterRequest) (*types.ListResult, error) {
	if !kind.IsValid() {
		return nil, types.ErrUnknownResource
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Model(&ResourceRow{}).Where("kind = ?", string(kind))

	if types.HasActiveFilters(req.Filters) {
		cc := NewConvertContext(time.Now())
		if err := Convert(cc, req.Filters); err != nil {
			return nil, errors.Wrap(err, "convert filters")
		}
		if where := cc.Buffer.String(); where != "" {
			tx = tx.Where(where, cc.Args...)
		}
	}

	if search := strings.TrimSpace(req.Search); search != "" {
		like := "%" + search + "%"
		tx = tx.Where("(name LIKE ? OR note LIKE ? OR owner LIKE ?)", like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count records")
	}

	for _, o := range req.OrderBy {
		spec, ok := filterableFields[o.Key]
		if !ok {
			return nil, errors.Wrapf(types.ErrMalformedFilter, "unknown order key %s", o.Key)
		}
		tx = tx.Order(spec.Column + " " + string(o.Direction.Normalized()))
	}
	// stable tiebreaker
	tx = tx.Order("id asc")

	var rows []ResourceRow
	offset := (req.Page - 1) * req.Limit
	if err := tx.Offset(int(offset)).Limit(int(req.Limit)).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list records")
	}

	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.ToRecord())
	}

	totalPages := total / req.Limit
	if total%req.Limit != 0 {
		totalPages++
	}
	return &types.ListResult{
		Data: records,
		Pagination: types.PageInfo{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// FilterMetadata reports the filterable fields of a kind. The field set
// is uniform across kinds in the development store.
func (s *Store) FilterMetadata(_ context.Context, kind types.Kind) (*types.FilterMetadata, error) {
	if !kind.IsValid() {
		return nil, types.ErrUnknownResource
	}
	meta := Metadata()
	return &meta, nil
}

func (s *Store) Get(ctx context.Context, kind types.Kind, id string) (*ResourceRow, error) {
	row := &ResourceRow{}
	res := s.db.WithContext(ctx).Where("kind = ? AND id = ?", string(kind), id).First(row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound
		}
		return nil, res.Error
	}
	return row, nil
}

// Create inserts a record and announces the change on the event bus.
func (s *Store) Create(ctx context.Context, kind types.Kind, row ResourceRow) error {
	if !kind.IsValid() {
		return types.ErrUnknownResource
	}
	row.Kind = string(kind)
	now := time.Now()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.Wrap(err, "create record")
	}
	events.PublishChanged(events.ActionTypeCreate, eventSource, kind, row.ID)
	return nil
}

func (s *Store) Update(ctx context.Context, kind types.Kind, row ResourceRow) error {
	if !kind.IsValid() {
		return types.ErrUnknownResource
	}
	row.Kind = string(kind)
	row.UpdatedAt = time.Now()

	res := s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", string(kind), row.ID).
		Updates(&row)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update record")
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	events.PublishChanged(events.ActionTypeUpdate, eventSource, kind, row.ID)
	return nil
}

func (s *Store) Delete(ctx context.Context, kind types.Kind, id string) error {
	if !kind.IsValid() {
		return types.ErrUnknownResource
	}
	res := s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", string(kind), id).
		Delete(&ResourceRow{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete record")
	}
	if res.RowsAffected == 0 {
		return types.ErrNotFound
	}
	events.PublishChanged(events.ActionTypeDestroy, eventSource, kind, id)
	return nil
}

// Count returns the number of rows of one kind, or of all kinds when
// kind is empty.
func (s *Store) Count(ctx context.Context, kind types.Kind) (int64, error) {
	var total int64
	tx := s.db.WithContext(ctx).Model(&ResourceRow{})
	if kind != "" {
		tx = tx.Where("kind = ?", string(kind))
	}
	err := tx.Count(&total).Error
	return total, err
}
