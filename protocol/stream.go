package protocol

import (
	"encoding/json"
	"log/slog"
)

// StreamEvent wraps a fine-grained partial-token event. These are only
// emitted when the agent is asked to include partial messages, and they
// precede the cumulative assistant message that restates the same
// content.
type StreamEvent struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"session_id"`
	Event     json.RawMessage `json:"event"`
}

// MsgType returns the message type.
func (m StreamEvent) MsgType() MessageType { return MessageTypeStreamEvent }

// StreamEventType discriminates between inner stream event kinds.
type StreamEventType string

const (
	StreamEventTypeMessageStart      StreamEventType = "message_start"
	StreamEventTypeContentBlockStart StreamEventType = "content_block_start"
	StreamEventTypeContentBlockDelta StreamEventType = "content_block_delta"
	StreamEventTypeContentBlockStop  StreamEventType = "content_block_stop"
	StreamEventTypeMessageDelta      StreamEventType = "message_delta"
	StreamEventTypeMessageStop       StreamEventType = "message_stop"
)

// StreamEventData is the interface for inner stream event discrimination.
type StreamEventData interface {
	EventType() StreamEventType
}

// ContentBlockDeltaEvent contains incremental content.
type ContentBlockDeltaEvent struct {
	Type  StreamEventType `json:"type"`
	Index int             `json:"index"`
	Delta json.RawMessage `json:"delta"`
}

// EventType returns the stream event type.
func (e ContentBlockDeltaEvent) EventType() StreamEventType { return StreamEventTypeContentBlockDelta }

// ParsedDelta parses the delta field.
func (e ContentBlockDeltaEvent) ParsedDelta() (DeltaData, error) {
	return ParseDelta(e.Delta)
}

// InfoEvent covers the informational stream event kinds the translator
// does not act on (message_start, content_block_start/stop,
// message_delta, message_stop).
type InfoEvent struct {
	Type StreamEventType `json:"type"`
}

// EventType returns the stream event type.
func (e InfoEvent) EventType() StreamEventType { return e.Type }

// DeltaData is the interface for content block delta discrimination.
type DeltaData interface {
	DeltaType() string
}

// TextDelta is a plain-text token.
type TextDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// DeltaType returns the delta type.
func (d TextDelta) DeltaType() string { return d.Type }

// InputJSONDelta is a structured-output fragment (also used for
// streaming tool input).
type InputJSONDelta struct {
	Type        string `json:"type"`
	PartialJSON string `json:"partial_json"`
}

// DeltaType returns the delta type.
func (d InputJSONDelta) DeltaType() string { return d.Type }

// ThinkingDelta is a reasoning token.
type ThinkingDelta struct {
	Type     string `json:"type"`
	Thinking string `json:"thinking"`
}

// DeltaType returns the delta type.
func (d ThinkingDelta) DeltaType() string { return d.Type }

// ParseDelta parses the inner delta of a content_block_delta event.
// Unknown delta types return (nil, nil).
func ParseDelta(data json.RawMessage) (DeltaData, error) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, err
	}

	switch base.Type {
	case "text_delta":
		var d TextDelta
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	case "input_json_delta":
		var d InputJSONDelta
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	case "thinking_delta":
		var d ThinkingDelta
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		slog.Debug("skipping unknown content block delta type", "type", base.Type)
		return nil, nil
	}
}

// ParseStreamEvent parses the inner event of a StreamEvent envelope.
// Unknown kinds return (nil, nil).
func ParseStreamEvent(data json.RawMessage) (StreamEventData, error) {
	var base struct {
		Type StreamEventType `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, err
	}

	switch base.Type {
	case StreamEventTypeContentBlockDelta:
		var e ContentBlockDeltaEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case StreamEventTypeMessageStart, StreamEventTypeContentBlockStart,
		StreamEventTypeContentBlockStop, StreamEventTypeMessageDelta,
		StreamEventTypeMessageStop:
		return InfoEvent{Type: base.Type}, nil
	default:
		slog.Debug("skipping unknown stream event type", "type", base.Type)
		return nil, nil
	}
}
