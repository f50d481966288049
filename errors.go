package relay

import (
	"errors"
	"fmt"
)

// ErrEmptyPrompt is returned when a request contains no usable messages.
var ErrEmptyPrompt = errors.New("empty prompt")

// AuthError indicates the upstream agent rejected the credentials.
// Not retryable.
type AuthError struct {
	Message  string
	ExitCode int
}

func (e *AuthError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("authentication failed (exit code %d): %s", e.ExitCode, e.Message)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// TimeoutError indicates the upstream agent timed out. Retryable.
type TimeoutError struct {
	Message string
	Cause   error
}

func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("timed out: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("timed out: %s", e.Message)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// TransportError indicates a transient transport-level failure
// (connection refused/reset, lookup failure). Retryable.
type TransportError struct {
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport failure: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transport failure: %s", e.Message)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// AgentError is the non-retryable catch-all for upstream agent failures.
// It carries enough context (exit code, stderr, prompt excerpt) to drive
// caller-side handling.
type AgentError struct {
	Message       string
	ExitCode      int
	Stderr        string
	PromptExcerpt string
	Cause         error
}

func (e *AgentError) Error() string {
	msg := e.Message
	if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s (exit code %d)", msg, e.ExitCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("agent failure: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("agent failure: %s", msg)
}

func (e *AgentError) Unwrap() error { return e.Cause }

// StructuredOutputError indicates the upstream agent exhausted its
// retries without producing schema-valid structured output. Hard failure.
type StructuredOutputError struct {
	Message string
}

func (e *StructuredOutputError) Error() string {
	return fmt.Sprintf("structured output retries exhausted: %s", e.Message)
}

// ToolInputSizeError indicates a tool input payload exceeded the hard
// size limit. Protects against malformed or adversarial payloads.
type ToolInputSizeError struct {
	ToolCallID string
	Size       int
	Limit      int
}

func (e *ToolInputSizeError) Error() string {
	return fmt.Sprintf("tool input for %s is %d bytes, exceeds limit of %d", e.ToolCallID, e.Size, e.Limit)
}

// MalformedOutputError indicates the upstream emitted output the
// translator could not parse, and the failure was not classified as
// mid-emission truncation. The original parser message is preserved so
// callers can distinguish it from truncation.
type MalformedOutputError struct {
	Cause error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed agent output: %v", e.Cause)
}

func (e *MalformedOutputError) Unwrap() error { return e.Cause }

// Retryable reports whether the error is transient and the request can
// be retried. Cancellation, auth, and malformed-output failures are not
// retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	var tre *TransportError
	return errors.As(err, &tre)
}
