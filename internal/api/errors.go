// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Status  int
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match any ClientError of the same type, so wrapped
// errors still compare against the sentinels below.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeAuth
	ErrTypeNotFound
	ErrTypeServer
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "unable to connect to the server"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrAuthFailed  = &ClientError{Type: ErrTypeAuth, Message: "authentication failed"}
	ErrNotFound    = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsAuthError reports whether err represents a rejected or expired token.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsUnreachable reports whether err means the backend could not be reached
// at all, as opposed to the backend answering with a failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable) || errors.Is(err, ErrTimeout)
}

// UserMessage converts a client error into a line fit for the error banner.
func UserMessage(err error) string {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return err.Error()
	}
	switch ce.Type {
	case ErrTypeUnreachable:
		return "Unable to connect to the server. Please check your connection."
	case ErrTypeTimeout:
		return "The server took too long to respond. Please try again."
	case ErrTypeAuth:
		return "Your session has expired. Please log in again."
	default:
		if ce.Message != "" {
			return ce.Message
		}
		return fmt.Sprintf("Server error: %d", ce.Status)
	}
}
