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

// Package console drives one visible resource list: it owns the current
// query state, debounces search input, and swaps cache subscriptions as
// the state changes.
package console

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opsdeck/console/pkg/apiclient"
	"github.com/opsdeck/console/pkg/debounce"
	"github.com/opsdeck/console/pkg/query"
	"github.com/opsdeck/console/pkg/querycache"
	"github.com/opsdeck/console/pkg/types"
	"github.com/opsdeck/console/pkg/urlstate"
	"github.com/opsdeck/console/utils/logger"
)

const (
	defaultPageLimit = 20
	metadataTimeout  = time.Second * 10
)

// Session is one consumer's view of a resource list. Its methods are
// safe to call from the UI goroutine while the debouncer fires from its
// timer.
type Session struct {
	mu   sync.Mutex
	svc  *querycache.Service
	cli  *apiclient.Client
	kind types.Kind

	limit     int64
	state     query.State
	handle    *querycache.Handle
	searchDeb *debounce.Debouncer[string]
	logger    *zap.SugaredLogger

	metaOnce sync.Once
	meta     *types.FilterMetadata
}

type Option func(*Session)

func WithPageLimit(limit int64) Option {
	return func(s *Session) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func WithSearchDelay(delay time.Duration) Option {
	return func(s *Session) {
		s.searchDeb = debounce.New(delay, s.applySearch)
	}
}

// NewSession opens a session on the given kind and immediately
// subscribes to its unfiltered list.
func NewSession(svc *querycache.Service, cli *apiclient.Client, kind types.Kind, opts ...Option) (*Session, error) {
	s := &Session{
		svc:    svc,
		cli:    cli,
		kind:   kind,
		limit:  defaultPageLimit,
		logger: logger.NewLogger("session").With("kind", kind),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.searchDeb == nil {
		s.searchDeb = debounce.New(debounce.DefaultDelay, s.applySearch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.resubscribe(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handle is the live cache subscription. It changes whenever the query
// state changes, callers should re-read it after any Set call.
func (s *Session) Handle() *querycache.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

func (s *Session) State() query.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFilters swaps the filter tree and re-subscribes right away. Filter
// edits are explicit apply actions, they are not debounced.
func (s *Session) SetFilters(filters *types.FilterNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if types.FilterEqual(s.state.Filters, filters) {
		return nil
	}
	s.state.Filters = filters
	return s.resubscribe()
}

func (s *Session) SetOrder(orderBy []types.OrderByItem, groupBy []types.GroupByItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if types.OrderByEqual(s.state.OrderBy, orderBy) && types.GroupByEqual(s.state.GroupBy, groupBy) {
		return nil
	}
	s.state.OrderBy = orderBy
	s.state.GroupBy = groupBy
	return s.resubscribe()
}

// SetSearch feeds one keystroke of the search box. The new text takes
// effect only after the debounce delay passes without further input.
func (s *Session) SetSearch(input string) {
	s.searchDeb.Set(input)
}

// FlushSearch applies pending search input immediately, the enter-key
// path of the search box.
func (s *Session) FlushSearch() {
	s.searchDeb.Flush()
}

// Link renders the current state as a shareable URL under base.
func (s *Session) Link(base string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return urlstate.BuildLink(base, s.state)
}

// RestoreLink replaces the whole state with one parsed from a shared
// link. Malformed pieces of the link degrade to inactive state, and so
// do filter conditions on fields the kind's metadata no longer serves.
func (s *Session) RestoreLink(link string) error {
	state := urlstate.ParseLink(link)
	if types.HasActiveFilters(state.Filters) {
		if meta := s.filterMetadata(); meta != nil {
			state.Filters = meta.PruneFilter(state.Filters)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return s.resubscribe()
}

// filterMetadata fetches the kind's metadata once per session. When the
// endpoint is unreachable it returns nil and restore skips pruning.
func (s *Session) filterMetadata() *types.FilterMetadata {
	s.metaOnce.Do(func() {
		ctx, canF := context.WithTimeout(context.Background(), metadataTimeout)
		defer canF()
		meta, err := s.cli.FilterMetadata(ctx, s.kind)
		if err != nil {
			s.logger.Warnw("fetch filter metadata failed", "err", err)
			return
		}
		s.meta = meta
	})
	return s.meta
}

func (s *Session) Close() {
	s.searchDeb.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
}

func (s *Session) applySearch(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return
	}
	if s.state.Search == input {
		return
	}
	s.state.Search = input
	if err := s.resubscribe(); err != nil {
		s.logger.Warnw("apply search failed", "err", err)
	}
}

// resubscribe composes the canonical request for the current state and
// swaps the cache handle. The old subscription is released only after
// the new one is live, so a shared entry never drops to zero refs in
// between. Callers hold s.mu.
func (s *Session) resubscribe() error {
	state := s.state
	if !query.UseAdvancedFiltering(state) {
		// simple path: the key carries kind and search only, so an
		// inactive filter tree can never split it from the plain list
		state = query.State{Search: state.Search}
	}

	base, err := query.BuildRequest(state, 1, s.limit)
	if err != nil {
		return err
	}

	next, err := s.svc.Query(querycache.Key{
		Kind:    s.kind,
		Filters: base.Filters,
		Search:  base.Search,
		OrderBy: base.OrderBy,
	}, s.cli.PageFetcher(s.kind, base))
	if err != nil {
		return err
	}

	if s.handle != nil {
		s.handle.Close()
	}
	s.handle = next
	return nil
}
