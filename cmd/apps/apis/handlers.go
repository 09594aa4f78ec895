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

package apis

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opsdeck/console/pkg/liststore"
	"github.com/opsdeck/console/pkg/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) ListResources(gCtx *gin.Context) {
	kind := types.Kind(gCtx.Param("resource"))

	req := types.AdvancedFilterRequest{}
	if err := gCtx.ShouldBindJSON(&req); err != nil {
		gCtx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.store.List(gCtx.Request.Context(), kind, req)
	if err != nil {
		s.respondError(gCtx, err)
		return
	}
	gCtx.JSON(http.StatusOK, result)
}

func (s *Server) FilterMetadata(gCtx *gin.Context) {
	kind := types.Kind(gCtx.Param("resource"))

	meta, err := s.store.FilterMetadata(gCtx.Request.Context(), kind)
	if err != nil {
		s.respondError(gCtx, err)
		return
	}
	gCtx.JSON(http.StatusOK, meta)
}

type recordRequest struct {
	Name        string     `json:"name" binding:"required"`
	Status      string     `json:"status"`
	Environment string     `json:"environment"`
	Owner       string     `json:"owner"`
	Priority    int64      `json:"priority"`
	URL         string     `json:"url"`
	Username    string     `json:"username"`
	Note        string     `json:"note"`
	Archived    bool       `json:"archived"`
	DueAt       *time.Time `json:"due_at"`
}

func (s *Server) CreateResource(gCtx *gin.Context) {
	kind := types.Kind(gCtx.Param("resource"))

	req := recordRequest{}
	if err := gCtx.ShouldBindJSON(&req); err != nil {
		gCtx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	row := rowFromRequest(req)
	row.ID = uuid.New().String()
	if err := s.store.Create(gCtx.Request.Context(), kind, row); err != nil {
		s.respondError(gCtx, err)
		return
	}
	gCtx.JSON(http.StatusCreated, map[string]string{"id": row.ID})
}

func (s *Server) UpdateResource(gCtx *gin.Context) {
	kind := types.Kind(gCtx.Param("resource"))

	req := recordRequest{}
	if err := gCtx.ShouldBindJSON(&req); err != nil {
		gCtx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	row := rowFromRequest(req)
	row.ID = gCtx.Param("id")
	if err := s.store.Update(gCtx.Request.Context(), kind, row); err != nil {
		s.respondError(gCtx, err)
		return
	}
	gCtx.Status(http.StatusNoContent)
}

func (s *Server) DeleteResource(gCtx *gin.Context) {
	kind := types.Kind(gCtx.Param("resource"))

	if err := s.store.Delete(gCtx.Request.Context(), kind, gCtx.Param("id")); err != nil {
		s.respondError(gCtx, err)
		return
	}
	gCtx.Status(http.StatusNoContent)
}

func rowFromRequest(req recordRequest) liststore.ResourceRow {
	return liststore.ResourceRow{
		Name:        req.Name,
		Status:      req.Status,
		Environment: req.Environment,
		Owner:       req.Owner,
		Priority:    req.Priority,
		URL:         req.URL,
		Username:    req.Username,
		Note:        req.Note,
		Archived:    req.Archived,
		DueAt:       req.DueAt,
	}
}

func (s *Server) respondError(gCtx *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrUnknownResource), errors.Is(err, types.ErrNotFound):
		gCtx.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrInvalidPagination),
		errors.Is(err, types.ErrMalformedFilter),
		errors.Is(err, types.ErrFilterTooDeep):
		gCtx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Errorw("request failed", "err", err)
		gCtx.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
