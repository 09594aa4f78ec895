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
	"fmt"
	"strconv"
)

// AdvancedFilterRequest is the one shape the list endpoint accepts.
// Grouping never appears here, the composer folds it into OrderBy.
type AdvancedFilterRequest struct {
	Filters *FilterNode   `json:"filters,omitempty"`
	Search  string        `json:"search,omitempty"`
	OrderBy []OrderByItem `json:"orderBy,omitempty"`
	Page    int64         `json:"page"`
	Limit   int64         `json:"limit"`
}

func (r *AdvancedFilterRequest) Validate() error {
	if r.Page < 1 || r.Limit < 1 {
		return ErrInvalidPagination
	}
	if r.Filters != nil {
		return r.Filters.Validate()
	}
	return nil
}

// WithPage returns a copy of the request pointing at another page.
func (r AdvancedFilterRequest) WithPage(page int64) AdvancedFilterRequest {
	r.Page = page
	return r
}

type PageInfo struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// HasNext is computed strictly from this page's own metadata.
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages
}

// Record is one row of a listed resource as returned by the endpoint.
type Record map[string]interface{}

// ID returns the record identity used by locate-and-highlight flows.
func (r Record) ID() string {
	raw, ok := r["id"]
	if !ok {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// ListResult is the list endpoint response body.
type ListResult struct {
	Data       []Record `json:"data"`
	Pagination PageInfo `json:"pagination"`
}
