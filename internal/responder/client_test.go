// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/examineai/examine-tui/internal/model"
)

func successBody(content, finishReason string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-123",
		"model": "gpt-4",
		"created": 1700000000,
		"choices": [{"message": {"role": "assistant", "content": %q}, "finish_reason": %q}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46}
	}`, content, finishReason)
}

func testMessages() []*model.Message {
	return []*model.Message{
		model.NewSystemMessage("be helpful"),
		model.NewUserMessage("hello"),
	}
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Model != "gpt-4" {
			t.Errorf("model = %q, want gpt-4", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[1].Content != "hello" {
			t.Errorf("unexpected wire messages: %+v", req.Messages)
		}

		fmt.Fprint(w, successBody("hi there", "stop"))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	comp, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if comp.Content != "hi there" {
		t.Errorf("Content = %q", comp.Content)
	}
	if comp.Status() != model.StatusOK {
		t.Errorf("Status = %q, want OK", comp.Status())
	}
	if comp.ResponseID != "chatcmpl-123" {
		t.Errorf("ResponseID = %q", comp.ResponseID)
	}
	if comp.Usage.TotalTokens != 46 {
		t.Errorf("TotalTokens = %d", comp.Usage.TotalTokens)
	}
}

func TestFetchLengthFinishIsWarn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, successBody("truncated answ", "length"))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	comp, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if comp.Status() != model.StatusWarn {
		t.Errorf("Status = %q, want WARN", comp.Status())
	}

	msg := comp.ToMessage()
	if msg.Status != model.StatusWarn || msg.FinishReason != "length" {
		t.Errorf("ToMessage status=%q finish=%q", msg.Status, msg.FinishReason)
	}
	if msg.PromptTokens != 12 || msg.CompletionTokens != 34 {
		t.Errorf("usage not carried: %d/%d", msg.PromptTokens, msg.CompletionTokens)
	}
}

func TestFetchStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		wantKind ErrorKind
	}{
		{http.StatusBadRequest, KindInvalidRequest},
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusForbidden, KindPermission},
		{http.StatusNotFound, KindInvalidRequest},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusInternalServerError, KindAPIError},
		{http.StatusBadGateway, KindAPIError},
		{http.StatusTeapot, KindUnknown},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			fmt.Fprintf(w, `{"error": {"message": "nope", "type": "test"}}`)
		}))

		client := NewClient("test-key").WithBaseURL(server.URL)
		_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
		server.Close()

		if err == nil {
			t.Errorf("status %d: expected error", tt.status)
			continue
		}
		if got := KindOf(err); got != tt.wantKind {
			t.Errorf("status %d: kind = %q, want %q", tt.status, got, tt.wantKind)
		}

		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Errorf("status %d: error is not a *RequestError", tt.status)
			continue
		}
		if reqErr.Message != "nope" {
			t.Errorf("status %d: message = %q, want endpoint message", tt.status, reqErr.Message)
		}
	}
}

func TestFetchAuthSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key").WithBaseURL(server.URL)
	_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("expected ErrAuthFailed, got %v", err)
	}
}

func TestFetchRateLimitSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if KindOf(err) != KindRateLimit {
		t.Errorf("kind = %q, want rate_limit_error", KindOf(err))
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, successBody("late", "stop"))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL).WithTimeout(20 * time.Millisecond)
	_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if KindOf(err) != KindTimeout {
		t.Errorf("kind = %q, want timeout", KindOf(err))
	}
}

func TestFetchConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient("test-key").WithBaseURL(server.URL)
	_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if err == nil {
		t.Fatal("expected connection error")
	}
	if KindOf(err) != KindConnection {
		t.Errorf("kind = %q, want connection_error", KindOf(err))
	}
}

func TestFetchGarbledResponseNotSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if err == nil {
		t.Fatal("garbled body must not be a success")
	}
	if KindOf(err) != KindAPIError {
		t.Errorf("kind = %q, want api_error", KindOf(err))
	}
}

func TestFetchEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "x", "model": "gpt-4", "choices": []}`)
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if err == nil || KindOf(err) != KindAPIError {
		t.Errorf("expected api_error for empty choices, got %v", err)
	}
}

func TestFetchNotConfigured(t *testing.T) {
	client := NewClient("")
	_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if KindOf(err) != KindAuthentication {
		t.Errorf("kind = %q, want authentication_error", KindOf(err))
	}
}

func TestFetchSingleShotByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected a single request, got %d", got)
	}
}

func TestFetchRetriesWhenEnabled(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, successBody("second try", "stop"))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL).WithMaxRetries(2)
	comp, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comp.Content != "second try" {
		t.Errorf("Content = %q", comp.Content)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestFetchNoRetryForAuthErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL).WithMaxRetries(3)
	_, err := client.Fetch(context.Background(), testMessages(), "gpt-4")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("auth failures are not retryable; got %d requests", got)
	}
}

func TestRequestErrorNotice(t *testing.T) {
	err := &RequestError{Kind: KindRateLimit, Message: "rate limit exceeded"}
	if err.Notice() != "Error: rate limit exceeded" {
		t.Errorf("Notice() = %q", err.Notice())
	}
}

func TestCalculateBackoff(t *testing.T) {
	if calculateBackoff(0) != retryBaseDelay {
		t.Errorf("attempt 0 = %v", calculateBackoff(0))
	}
	if calculateBackoff(1) != 2*retryBaseDelay {
		t.Errorf("attempt 1 = %v", calculateBackoff(1))
	}
	if calculateBackoff(20) != retryMaxDelay {
		t.Errorf("large attempt should cap at %v, got %v", retryMaxDelay, calculateBackoff(20))
	}
}
