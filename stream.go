package relay

// EventType identifies the kind of event in a streaming response.
type EventType string

// Run lifecycle events.
const (
	// EventStreamStart fires once before any content, carrying any
	// warnings produced while preparing the request.
	EventStreamStart EventType = "stream_start"

	// EventResponseMetadata carries informational response identity
	// (session id, model) as soon as it is known. Non-terminal.
	EventResponseMetadata EventType = "response_metadata"

	// EventFinish is the terminal success event, carrying finish reason,
	// usage, and provider metadata. Exactly one of EventFinish or
	// EventError ends every stream.
	EventFinish EventType = "finish"

	// EventError is the terminal failure event.
	EventError EventType = "error"
)

// Text block events.
const (
	// EventTextStart fires when a text block opens.
	EventTextStart EventType = "text_start"

	// EventTextDelta carries an incremental text fragment.
	EventTextDelta EventType = "text_delta"

	// EventTextEnd fires when a text block closes.
	EventTextEnd EventType = "text_end"
)

// Reasoning block events.
const (
	// EventReasoningStart fires when a reasoning block opens.
	EventReasoningStart EventType = "reasoning_start"

	// EventReasoningDelta carries an incremental reasoning fragment.
	EventReasoningDelta EventType = "reasoning_delta"

	// EventReasoningEnd fires when a reasoning block closes.
	EventReasoningEnd EventType = "reasoning_end"
)

// Tool lifecycle events. For each tool call ID, the observed order is
// always input_start, zero or more input_delta, input_end, tool_call,
// then zero or more tool_result/tool_error events.
const (
	// EventToolInputStart fires when a tool invocation is first seen.
	EventToolInputStart EventType = "tool_input_start"

	// EventToolInputDelta carries an appended fragment of the serialized
	// tool input.
	EventToolInputDelta EventType = "tool_input_delta"

	// EventToolInputEnd fires when the tool input is complete.
	EventToolInputEnd EventType = "tool_input_end"

	// EventToolCall fires exactly once per tool ID with the full input.
	EventToolCall EventType = "tool_call"

	// EventToolResult carries a result for an already-called tool.
	EventToolResult EventType = "tool_result"

	// EventToolError carries an execution failure for an already-called
	// tool. Results and errors may both recur for the same ID.
	EventToolError EventType = "tool_error"
)

// Event represents a single event in a streaming response.
// Which fields are populated depends on Type.
type Event struct {
	// Type identifies the kind of event.
	Type EventType

	// BlockID identifies the text or reasoning block for Start/Delta/End
	// correlation.
	BlockID string

	// Delta contains incremental content for delta events.
	Delta string

	// ToolCall is populated for all tool lifecycle events. For
	// EventToolInputDelta, Delta holds the appended input fragment and
	// ToolCall.ID identifies the invocation.
	ToolCall *ToolCall

	// ToolResult is populated for EventToolResult and EventToolError.
	ToolResult *ToolResult

	// SessionID and Model are populated for EventResponseMetadata.
	SessionID string
	Model     string

	// Warnings is populated for EventStreamStart.
	Warnings []Warning

	// FinishReason, Usage, and Metadata are populated for EventFinish.
	FinishReason FinishReason
	Usage        Usage
	Metadata     *Metadata

	// Err is populated for EventError.
	Err error
}

// Terminal returns true for the two events that end a stream.
func (e Event) Terminal() bool {
	return e.Type == EventFinish || e.Type == EventError
}
