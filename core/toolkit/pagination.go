// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package toolkit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pagecore/pagecore/core/page"
	"github.com/pagecore/pagecore/pkg/errors"
)

// cursorTTL bounds how long a minted next-page cursor stays resolvable.
const cursorTTL = 10 * time.Minute

// PaginatedResponse is the wrapped result of a paginated tool call, per
// spec.md §4.9.
type PaginatedResponse struct {
	Items       []*page.Page
	PageNumber  int
	HasNextPage bool
	TotalCount  *int
	NextCursor  string
	// TokenCount is the summed token contribution of Items, per the
	// tool's TokenCount function; zero if the tool declared none.
	TokenCount int
}

// Paginator slices a tool's full result sequence into page-size windows,
// trimmed to a per-page token budget, and mints opaque cursor tokens for
// subsequent pages.
type Paginator struct {
	pageSize    int
	tokenBudget int
	tokenCount  func(p *page.Page) int
	cursors     *MemoryResultCache
}

// NewPaginator constructs a Paginator. pageSize is clamped to at least 1.
// tokenBudget <= 0 or a nil tokenCount disables token-budget trimming.
func NewPaginator(pageSize, tokenBudget int, tokenCount func(p *page.Page) int) *Paginator {
	if pageSize <= 0 {
		pageSize = 1
	}
	return &Paginator{
		pageSize:    pageSize,
		tokenBudget: tokenBudget,
		tokenCount:  tokenCount,
		cursors: NewMemoryResultCache(CacheConfig{
			MaxSize:        10000,
			DefaultTTL:     cursorTTL,
			EvictionPolicy: EvictionPolicyTTL,
		}),
	}
}

// Paginate returns the pageIndex-th window of full (0-based), trimmed to
// the token budget.
//
// has_next_page reflects whether the full sequence extends past this
// page's size-defined window, not whether the token budget happened to
// trim this page short — a page's boundary is fixed by page size; the
// budget only controls how much of that boundary is actually returned.
func (p *Paginator) Paginate(ctx context.Context, full []*page.Page, pageIndex int, totalCount *int) (PaginatedResponse, error) {
	start := pageIndex * p.pageSize
	if start > len(full) {
		start = len(full)
	}
	windowEnd := start + p.pageSize
	if windowEnd > len(full) {
		windowEnd = len(full)
	}
	window := full[start:windowEnd]

	resp := PaginatedResponse{
		Items:       p.applyTokenBudget(window),
		PageNumber:  pageIndex,
		HasNextPage: windowEnd < len(full),
		TotalCount:  totalCount,
	}
	if p.tokenCount != nil {
		sum := 0
		for _, pg := range resp.Items {
			sum += p.tokenCount(pg)
		}
		resp.TokenCount = sum
	}

	if resp.HasNextPage {
		token := uuid.NewString()
		if err := p.cursors.Set(ctx, token, pageIndex+1, cursorTTL); err != nil {
			return PaginatedResponse{}, err
		}
		resp.NextCursor = token
	}
	return resp, nil
}

// ResolveCursor decodes a cursor token minted by Paginate into the page
// index it names.
func (p *Paginator) ResolveCursor(ctx context.Context, cursor string) (int, error) {
	v, found := p.cursors.Get(ctx, cursor)
	if !found {
		return 0, errors.ErrInvalidCursor.WithDetail("cursor", cursor)
	}
	return v.(int), nil
}

// applyTokenBudget trims window from the right to the longest prefix
// whose summed token counts do not exceed the budget, always retaining
// at least the first element.
func (p *Paginator) applyTokenBudget(window []*page.Page) []*page.Page {
	if p.tokenBudget <= 0 || p.tokenCount == nil || len(window) == 0 {
		return window
	}

	sum := 0
	cut := len(window)
	for i, pg := range window {
		sum += p.tokenCount(pg)
		if sum > p.tokenBudget {
			cut = i
			break
		}
	}
	if cut == 0 {
		cut = 1
	}
	return window[:cut]
}
