// Package protocol defines the tagged message union emitted by the
// upstream agent process (newline-delimited JSON) and the boundary
// parsers that decode it exactly once per message. Unknown message
// kinds decode to nil rather than failing the run.
package protocol

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Parse decodes one line of agent output into a typed message.
// Returns (nil, nil) for unknown message types so the caller can log
// and skip them. A decode failure on a known type is returned as-is,
// preserving the original parser message for truncation classification.
func Parse(line []byte) (Message, error) {
	var base struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(line, &base); err != nil {
		return nil, fmt.Errorf("parse message envelope: %w", err)
	}

	switch base.Type {
	case MessageTypeSystem:
		var m SystemMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeAssistant:
		var m AssistantMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeUser:
		var m UserMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeResult:
		var m ResultMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MessageTypeStreamEvent:
		var m StreamEvent
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		slog.Debug("skipping unknown message type", "type", base.Type)
		return nil, nil
	}
}

// UserTextMessage builds the message sent to the agent for a user turn.
type UserTextMessage struct {
	Type    string               `json:"type"`
	Message UserTextMessageInner `json:"message"`
}

// UserTextMessageInner is the inner part of a sent user message.
type UserTextMessageInner struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// NewUserTextMessage builds a plain-text user message.
func NewUserTextMessage(content string) UserTextMessage {
	return UserTextMessage{
		Type: "user",
		Message: UserTextMessageInner{
			Role:    "user",
			Content: content,
		},
	}
}

// ImageSource is the payload of an image content segment sent to the
// agent.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// InputSegment is one ordered content segment of a sent user message.
type InputSegment struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// NewUserSegmentMessage builds a user message from ordered content
// segments (text and images).
func NewUserSegmentMessage(segments []InputSegment) UserTextMessage {
	return UserTextMessage{
		Type: "user",
		Message: UserTextMessageInner{
			Role:    "user",
			Content: segments,
		},
	}
}
