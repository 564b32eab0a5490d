// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package responder sends message sequences to an OpenAI-compatible chat
// completions endpoint and classifies every outcome. A completion is
// either a typed success with finish-reason and usage metadata or a
// *RequestError carrying one of the closed error kinds; no partial or
// garbled response is ever surfaced as success.
package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/examineai/examine-tui/internal/model"
)

const (
	// DefaultBaseURL is the hosted completions endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff delay.
	retryMaxDelay = 10 * time.Second

	// maxResponseSize bounds the response body read.
	maxResponseSize = 10 * 1024 * 1024
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// chatMessage is the role+content pair sent on the wire. Timestamps and
// statuses never leave the client.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body for the chat completions endpoint.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatResponse is the response body from the chat completions endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// apiErrorResponse is the error envelope returned on non-200 statuses.
type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Usage holds the endpoint's token accounting for one request.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is a successful fetch outcome.
type Completion struct {
	Content      string
	FinishReason string
	ResponseID   string
	Model        string
	CreatedAt    time.Time
	Usage        Usage
}

// Status derives the message status: OK only when generation reached a
// natural stop, otherwise WARN (length cut-off, content filter).
func (c *Completion) Status() model.Status {
	if c.FinishReason == "stop" {
		return model.StatusOK
	}
	return model.StatusWarn
}

// ToMessage converts the completion into a transcript message.
func (c *Completion) ToMessage() *model.Message {
	msg := model.NewAssistantMessage(c.Content)
	msg.Status = c.Status()
	msg.Model = c.Model
	msg.FinishReason = c.FinishReason
	msg.ResponseID = c.ResponseID
	msg.PromptTokens = c.Usage.PromptTokens
	msg.CompletionTokens = c.Usage.CompletionTokens
	return msg
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one completions endpoint. Fetch is safe for
// concurrent use; the evaluation engine fans out over a single client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a client with the given API key. A zero-retry
// single-shot policy is the default; see WithMaxRetries.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		logger:     zap.NewNop(),
	}
}

// WithBaseURL sets a custom endpoint base URL.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries enables bounded retry for timeouts and rate limits.
// Zero keeps the single-shot policy.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// WithRateLimit caps outgoing requests per second. Used by the
// evaluation engine's fan-out so parallel principle evaluations do not
// trip the endpoint's limits.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithLogger sets the structured logger.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// IsConfigured returns true if the client has an API key.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// =============================================================================
// FETCH
// =============================================================================

// Fetch sends the message sequence to the completions endpoint and
// returns the classified outcome. The transcript is never mutated here;
// the caller appends the resulting message.
func (c *Client) Fetch(ctx context.Context, msgs []*model.Message, modelID string) (*Completion, error) {
	if !c.IsConfigured() {
		return nil, &RequestError{
			Kind:    KindAuthentication,
			Message: "API key not configured",
			Err:     ErrNotConfigured,
		}
	}

	wire := make([]chatMessage, 0, len(msgs))
	for _, msg := range msgs {
		wire = append(wire, chatMessage{Role: msg.Role.String(), Content: msg.Content})
	}
	reqBody := chatRequest{Model: modelID, Messages: wire}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, classifyTransport(ctx.Err())
			case <-time.After(calculateBackoff(attempt - 1)):
			}
		}

		comp, err := c.doRequest(ctx, reqBody)
		if err == nil {
			return comp, nil
		}

		if attempt >= c.maxRetries || !KindOf(err).Retryable() {
			return nil, err
		}
		c.logger.Warn("retrying completion request",
			zap.Int("attempt", attempt+1),
			zap.String("kind", string(KindOf(err))),
		)
	}
}

// doRequest performs a single HTTP round trip.
func (c *Client) doRequest(ctx context.Context, reqBody chatRequest) (*Completion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransport(err)
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &RequestError{Kind: KindInvalidRequest, Message: "failed to encode request", Err: err}
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, &RequestError{Kind: KindInvalidRequest, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("completion request",
		zap.String("model", reqBody.Model),
		zap.Int("messages", len(reqBody.Messages)),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, &RequestError{Kind: KindAPIError, Message: "failed to read response", Err: err}
	}

	c.logger.Debug("completion response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(resp.StatusCode, body)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, &RequestError{Kind: KindAPIError, Message: "failed to parse response", Err: err}
	}
	if len(chatResp.Choices) == 0 {
		return nil, &RequestError{Kind: KindAPIError, Message: "response contained no choices"}
	}

	choice := chatResp.Choices[0]
	return &Completion{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		ResponseID:   chatResp.ID,
		Model:        chatResp.Model,
		CreatedAt:    time.Unix(chatResp.Created, 0),
		Usage: Usage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		},
	}, nil
}

// errorFromResponse converts a non-200 response into a RequestError.
func (c *Client) errorFromResponse(status int, body []byte) *RequestError {
	kind := classifyStatus(status)

	message := ""
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}
	if message == "" {
		message = defaultMessage(kind, status)
	}

	reqErr := &RequestError{Kind: kind, Message: message, Status: status}
	switch kind {
	case KindAuthentication:
		reqErr.Err = ErrAuthFailed
	case KindRateLimit:
		reqErr.Err = ErrRateLimited
	}
	return reqErr
}

// defaultMessage supplies readable text when the error envelope is
// missing or unparsable.
func defaultMessage(kind ErrorKind, status int) string {
	switch kind {
	case KindInvalidRequest:
		return "the request was rejected as invalid"
	case KindAuthentication:
		return "authentication failed; check the API key"
	case KindPermission:
		return "the API key does not permit this operation"
	case KindRateLimit:
		return "rate limit exceeded"
	case KindTimeout:
		return "the endpoint timed out"
	case KindAPIError:
		return "the completion endpoint reported a server error"
	default:
		return fmt.Sprintf("unexpected response (HTTP %d)", status)
	}
}

// readBody reads the response body with a size limit.
func readBody(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, maxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(body)) == maxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", maxResponseSize)
	}
	return body, nil
}

// calculateBackoff returns the delay before the next retry attempt.
func calculateBackoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
