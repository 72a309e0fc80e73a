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

package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pagecore/pagecore/core/page"
	"github.com/pagecore/pagecore/core/toolkit"
	"github.com/pagecore/pagecore/pkg/errors"
)

// toolResponse is the wire encoding of a toolkit.PaginatedResponse, per
// spec.md §6's "documents, page_number, has_next_page, total_documents,
// token_count" contract.
type toolResponse struct {
	Documents      []*page.Page `json:"documents"`
	PageNumber     int          `json:"page_number"`
	HasNextPage    bool         `json:"has_next_page"`
	TotalDocuments *int         `json:"total_documents,omitempty"`
	TokenCount     int          `json:"token_count"`
	NextCursor     string       `json:"next_cursor,omitempty"`
}

func toToolResponse(p toolkit.PaginatedResponse) toolResponse {
	return toolResponse{
		Documents:      p.Items,
		PageNumber:     p.PageNumber,
		HasNextPage:    p.HasNextPage,
		TotalDocuments: p.TotalCount,
		TokenCount:     p.TokenCount,
		NextCursor:     p.NextCursor,
	}
}

// handleInvoke dispatches POST /tools/{name} to the context's toolkit.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var args map[string]interface{}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil && err != io.EOF {
			s.writeError(w, r, errors.ErrInvalidInput.WithMessage("malformed request body").Wrap(err))
			return
		}
	}

	resp, err := s.ctx.Toolkit.Invoke(r.Context(), name, args)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toToolResponse(resp))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps an *errors.Error to an HTTP status and writes a JSON
// body describing it. Unrecognized errors are treated as internal.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrToolNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidCursor):
		status = http.StatusBadRequest
	case errors.IsInvalidInput(err):
		status = http.StatusBadRequest
	case errors.IsCategory(err, errors.CategoryToolkit):
		status = http.StatusBadRequest
	case errors.IsTimeout(err):
		status = http.StatusGatewayTimeout
	case errors.IsRateLimitExceeded(err):
		status = http.StatusTooManyRequests
	}

	if status >= http.StatusInternalServerError {
		s.logError(r.Context(), "tool invocation failed", err)
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
