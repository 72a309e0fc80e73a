// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pagecore/pagecore/pkg/errors"
)

func TestIPKeyFromRequest_StripsPort(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.5:54321"
	if got := IPKeyFromRequest(r); got != "203.0.113.5" {
		t.Errorf("IPKeyFromRequest() = %q, want %q", got, "203.0.113.5")
	}
}

func TestToolKeyFromRequest_ExtractsName(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/tools/lookup", nil)
	if got := ToolKeyFromRequest(r); got != "lookup" {
		t.Errorf("ToolKeyFromRequest() = %q, want %q", got, "lookup")
	}
}

func TestHTTPMiddleware_BlocksOverLimit(t *testing.T) {
	limiter := NewTokenBucket(TokenBucketConfig{Rate: 0.001, Capacity: 1})
	defer limiter.Close()

	var gotErr error
	writeError := func(w http.ResponseWriter, r *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusTooManyRequests)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := HTTPMiddleware(limiter, IPKeyFromRequest, writeError)(next)

	req := httptest.NewRequest(http.MethodPost, "/tools/lookup", nil)
	req.RemoteAddr = "198.51.100.1:1111"

	w1 := httptest.NewRecorder()
	mw.ServeHTTP(w1, req)
	if w1.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w1.Code)
	}

	w2 := httptest.NewRecorder()
	mw.ServeHTTP(w2, req)
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w2.Code)
	}
	if !errors.Is(gotErr, errors.ErrRateLimitExceeded) {
		t.Errorf("gotErr = %v, want wrapping ErrRateLimitExceeded", gotErr)
	}
}
