package relay

import "context"

// ModelProvider is the standard generative-model interface callers use
// uniformly across providers.
type ModelProvider interface {
	// Generate sends a conversation and returns a single accumulated
	// response.
	Generate(ctx context.Context, messages []Message, opts ...Option) (*Response, error)

	// Stream sends a conversation and returns an ordered push-stream of
	// typed lifecycle events. The channel is closed after exactly one
	// terminal event (EventFinish or EventError). Context cancellation
	// is propagated verbatim through the terminal error event.
	Stream(ctx context.Context, messages []Message, opts ...Option) (<-chan Event, error)
}
