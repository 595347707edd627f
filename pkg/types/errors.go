package types

import "errors"

var (
	// ErrInvalidLLMCredentials is returned when the upfront LLM validation call fails
	ErrInvalidLLMCredentials = errors.New("invalid llm credentials")

	// ErrInvalidDateRange is returned for malformed or inverted date ranges
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrNotAuthorized is returned when no Gmail token is available
	ErrNotAuthorized = errors.New("gmail not authorized")

	// ErrSessionNotFound is returned when a session id has no stored data
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyCompletion is returned when the LLM returns no choices
	ErrEmptyCompletion = errors.New("empty completion")
)
