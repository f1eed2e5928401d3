package models

import "fmt"

// RetrievalError means the inventory store could not produce candidates.
// Handlers surface it as a 503 so callers can retry.
type RetrievalError struct {
	Cause error
}

func (e *RetrievalError) Error() string {
	return "search failed"
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// NotifyError means the composed message could not be handed off to the
// outbound channel. Handlers surface it as a 502.
type NotifyError struct {
	Cause error
}

func (e *NotifyError) Error() string {
	return "failed to send message"
}

func (e *NotifyError) Unwrap() error {
	return e.Cause
}

// InvalidCriteriaError means the demand's criteria cannot be matched against.
type InvalidCriteriaError struct {
	Field  string
	Reason string
}

func (e *InvalidCriteriaError) Error() string {
	return fmt.Sprintf("invalid criteria: %s %s", e.Field, e.Reason)
}
