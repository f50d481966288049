package protocol

import "encoding/json"

// MessageType discriminates between upstream message kinds.
type MessageType string

const (
	MessageTypeSystem      MessageType = "system"
	MessageTypeAssistant   MessageType = "assistant"
	MessageTypeUser        MessageType = "user"
	MessageTypeResult      MessageType = "result"
	MessageTypeStreamEvent MessageType = "stream_event"
)

// Message is the interface for all upstream messages.
type Message interface {
	MsgType() MessageType
}

// SystemMessage carries session initialization and other system events.
type SystemMessage struct {
	Type      MessageType `json:"type"`
	Subtype   string      `json:"subtype"`
	SessionID string      `json:"session_id"`
	Model     string      `json:"model,omitempty"`
	CWD       string      `json:"cwd,omitempty"`
	Tools     []string    `json:"tools,omitempty"`
}

// MsgType returns the message type.
func (m SystemMessage) MsgType() MessageType { return MessageTypeSystem }

// IsInit returns true for the session initialization message.
func (m SystemMessage) IsInit() bool { return m.Subtype == "init" }

// Usage tracks upstream token accounting.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	OutputTokens             int `json:"output_tokens"`
}

// MessageContent is the inner content of assistant and user messages.
type MessageContent struct {
	ID      string          `json:"id,omitempty"`
	Model   string          `json:"model,omitempty"`
	Role    string          `json:"role"`
	Content FlexibleContent `json:"content"`
	Usage   Usage           `json:"usage,omitempty"`
}

// AssistantMessage is a cumulative assistant turn.
type AssistantMessage struct {
	Type      MessageType    `json:"type"`
	SessionID string         `json:"session_id"`
	Message   MessageContent `json:"message"`
}

// MsgType returns the message type.
func (m AssistantMessage) MsgType() MessageType { return MessageTypeAssistant }

// UserMessage carries tool results echoed back by the agent.
type UserMessage struct {
	Type      MessageType    `json:"type"`
	SessionID string         `json:"session_id"`
	Message   MessageContent `json:"message"`
}

// MsgType returns the message type.
func (m UserMessage) MsgType() MessageType { return MessageTypeUser }

// Result message subtypes.
const (
	ResultSubtypeSuccess                   = "success"
	ResultSubtypeErrorMaxTurns             = "error_max_turns"
	ResultSubtypeErrorDuringExecution      = "error_during_execution"
	ResultSubtypeErrorMaxStructuredRetries = "error_max_structured_output_retries"
)

// ResultMessage is the terminal message of a run, carrying usage, cost,
// duration, and an optional structured-output payload.
type ResultMessage struct {
	Type             MessageType     `json:"type"`
	Subtype          string          `json:"subtype"`
	SessionID        string          `json:"session_id"`
	Result           string          `json:"result"`
	IsError          bool            `json:"is_error"`
	NumTurns         int             `json:"num_turns"`
	DurationMs       int64           `json:"duration_ms"`
	DurationAPIMs    int64           `json:"duration_api_ms"`
	TotalCostUSD     float64         `json:"total_cost_usd"`
	Usage            Usage           `json:"usage"`
	StructuredOutput json.RawMessage `json:"structured_output,omitempty"`
}

// MsgType returns the message type.
func (m ResultMessage) MsgType() MessageType { return MessageTypeResult }
