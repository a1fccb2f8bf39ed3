// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// TRANSPORT CONFIGURATION
// =============================================================================

const (
	// DefaultTimeout bounds list and history requests.
	DefaultTimeout = 15 * time.Second

	// DefaultSendTimeout bounds chat sends, which wait on LLM inference.
	DefaultSendTimeout = 120 * time.Second

	// maxResponseSize caps response bodies to prevent memory exhaustion.
	maxResponseSize = 10 * 1024 * 1024 // 10MB
)

// sharedHTTPClient pools connections across all backend requests. Timeouts
// are applied per request via context, not here.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// TokenSource supplies the bearer token for outgoing requests. An empty
// string means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to a TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// =============================================================================
// TRANSPORT
// =============================================================================

// Transport performs authenticated JSON requests against the backend.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource

	// onAuthFailure is invoked at most once per 401/403 response, after the
	// body has been drained and before the error is returned. May be nil.
	onAuthFailure func()
}

// NewTransport creates a transport rooted at baseURL. The base URL should
// include the API prefix, e.g. "http://localhost:8080/api".
func NewTransport(baseURL string, tokens TokenSource) *Transport {
	return &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: sharedHTTPClient,
		tokens:     tokens,
	}
}

// WithHTTPClient overrides the underlying HTTP client. Used by tests.
func (t *Transport) WithHTTPClient(client *http.Client) *Transport {
	t.httpClient = client
	return t
}

// SetOnAuthFailure installs the callback invoked when the backend rejects
// the bearer token. The transport does not clear credentials or end the
// session itself; the callback owns that decision.
func (t *Transport) SetOnAuthFailure(fn func()) {
	t.onAuthFailure = fn
}

// BaseURL returns the configured base URL.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// =============================================================================
// REQUEST EXECUTION
// =============================================================================

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Message string `json:"message"`
}

// do performs a single JSON request. body and out may be nil. Non-2xx
// responses are mapped onto the ClientError taxonomy; transport failures
// become ErrUnreachable or ErrTimeout.
func (t *Transport) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := t.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if t.onAuthFailure != nil {
			t.onAuthFailure()
		}
		return &ClientError{
			Type:    ErrTypeAuth,
			Status:  resp.StatusCode,
			Message: extractMessage(respBody, "authentication failed"),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return t.handleErrorResponse(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
		}
	}
	return nil
}

// handleErrorResponse maps a non-auth error status onto the error taxonomy,
// preferring the backend's own message when the envelope parses.
func (t *Transport) handleErrorResponse(statusCode int, body []byte) error {
	msg := extractMessage(body, "")
	switch statusCode {
	case http.StatusNotFound:
		if msg == "" {
			return ErrNotFound
		}
		return &ClientError{Type: ErrTypeNotFound, Status: statusCode, Message: msg}
	default:
		if msg == "" {
			msg = fmt.Sprintf("server error: %d", statusCode)
		}
		return &ClientError{Type: ErrTypeServer, Status: statusCode, Message: msg}
	}
}

// classifyTransportError separates timeouts from plain connection failures.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ErrTimeout
	}
	return &ClientError{Type: ErrTypeUnreachable, Message: "unable to connect to the server", Cause: err}
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, maxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}
	if int64(len(body)) == maxResponseSize {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "response exceeded maximum size"}
	}
	return body, nil
}

// extractMessage pulls the message out of the backend error envelope,
// falling back to the given default for unparseable bodies.
func extractMessage(body []byte, fallback string) string {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return fallback
}
