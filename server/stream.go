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
	"net/http"

	"github.com/pagecore/pagecore/core/page"
)

// searchRequest is one client message on the search-stream socket.
type searchRequest struct {
	Instruction       string `json:"instruction"`
	ResolveReferences bool   `json:"resolve_references"`
}

// referenceMessage is one server message: a reference, resolved or not,
// written to the socket as soon as it is available rather than waiting
// for the whole search to complete.
type referenceMessage struct {
	URI  string     `json:"uri"`
	Page *page.Page `json:"page,omitempty"`
	Done bool       `json:"done,omitempty"`
	Err  string     `json:"error,omitempty"`
}

// handleSearchStream runs the default retriever's Search for each
// incoming request and writes every reference to the websocket as it
// goes, resolving each one with its own GetPage call when the request
// asks for it. Context.Search is not called here.
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logError(r.Context(), "websocket upgrade failed", err)
		return
	}
	defer conn.Close()

	for {
		var req searchRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		retriever, ok := s.ctx.DefaultRetriever()
		if !ok {
			_ = conn.WriteJSON(referenceMessage{Err: "no retriever registered"})
			continue
		}

		refs, err := retriever.Search(r.Context(), req.Instruction)
		if err != nil {
			_ = conn.WriteJSON(referenceMessage{Err: err.Error()})
			continue
		}

		for _, ref := range refs {
			msg := referenceMessage{URI: ref.URI.String()}
			if req.ResolveReferences {
				if p, err := s.ctx.GetPage(r.Context(), ref.URI, false); err == nil {
					msg.Page = p
				} else {
					msg.Err = err.Error()
				}
			}
			if err := conn.WriteJSON(msg); err != nil {
				s.logError(r.Context(), "websocket write failed", err)
				return
			}
		}

		if err := conn.WriteJSON(referenceMessage{Done: true}); err != nil {
			return
		}
	}
}
