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

// Package apiclient speaks the console API's fixed contract:
// POST /api/v1/<resource>/list and GET /api/v1/<resource>/filter-metadata.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/opsdeck/console/pkg/querycache"
	"github.com/opsdeck/console/pkg/types"
	"github.com/opsdeck/console/utils/logger"
)

const defaultRequestTimeout = time.Second * 30

type Client struct {
	baseURL string
	httpCli *http.Client
	logger  *zap.SugaredLogger
}

type Option func(*Client)

func WithHTTPClient(cli *http.Client) Option {
	return func(c *Client) { c.httpCli = cli }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCli: &http.Client{Timeout: defaultRequestTimeout},
		logger:  logger.NewLogger("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches one page of a resource list.
func (c *Client) List(ctx context.Context, kind types.Kind, req types.AdvancedFilterRequest) (*types.ListResult, error) {
	if !kind.IsValid() {
		return nil, types.ErrUnknownResource
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode list request")
	}

	url := fmt.Sprintf("%s/api/v1/%s/list", c.baseURL, kind)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build list request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", kind)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("list %s: unexpected status %d", kind, resp.StatusCode)
	}

	result := &types.ListResult{}
	if err = json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, errors.Wrapf(err, "decode %s list response", kind)
	}
	return result, nil
}

// FilterMetadata fetches which fields and operators the resource allows.
// The filter-building boundary consults it, the cache never does.
func (c *Client) FilterMetadata(ctx context.Context, kind types.Kind) (*types.FilterMetadata, error) {
	if !kind.IsValid() {
		return nil, types.ErrUnknownResource
	}

	url := fmt.Sprintf("%s/api/v1/%s/filter-metadata", c.baseURL, kind)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build metadata request")
	}

	resp, err := c.httpCli.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "filter metadata %s", kind)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("filter metadata %s: unexpected status %d", kind, resp.StatusCode)
	}

	meta := &types.FilterMetadata{}
	if err = json.NewDecoder(resp.Body).Decode(meta); err != nil {
		return nil, errors.Wrapf(err, "decode %s filter metadata", kind)
	}
	return meta, nil
}

// PageFetcher adapts the client into the cache's fetch function. The
// base request carries filters, search, order and limit; the page number
// comes from the cache.
func (c *Client) PageFetcher(kind types.Kind, base types.AdvancedFilterRequest) querycache.FetchFunc {
	return func(ctx context.Context, page int64) (*types.ListResult, error) {
		return c.List(ctx, kind, base.WithPage(page))
	}
}
