// Package prompt converts caller-supplied conversation history into
// the agent's input representation: a prompt string plus an ordered
// list of input content segments, some of which are images.
package prompt

import (
	"fmt"
	"strings"

	"github.com/relaykit/relay"
	"github.com/relaykit/relay/protocol"
)

// Prompt is the converted input for one agent invocation.
type Prompt struct {
	// Text is the full prompt as a single string.
	Text string
	// Segments is the ordered content (text and images) sent to the
	// agent when any non-text content is present.
	Segments []protocol.InputSegment
	// Warnings records content that could not be represented exactly.
	Warnings []relay.Warning
}

// HasImages returns true when any segment carries image content.
func (p Prompt) HasImages() bool {
	for _, seg := range p.Segments {
		if seg.Type == "image" {
			return true
		}
	}
	return false
}

// Convert flattens a conversation into a Prompt. The agent process
// maintains its own session history, so prior turns are rendered as
// labeled transcript text; only images survive as structured segments.
func Convert(messages []relay.Message, systemPrompt string) (Prompt, error) {
	if len(messages) == 0 {
		return Prompt{}, relay.ErrEmptyPrompt
	}

	var p Prompt
	var text strings.Builder

	appendText := func(s string) {
		if s == "" {
			return
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(s)
		p.Segments = append(p.Segments, protocol.InputSegment{Type: "text", Text: s})
	}

	if systemPrompt != "" {
		appendText(systemPrompt)
	}

	for _, msg := range messages {
		label := roleLabel(msg.Role)

		if msg.HasParts() {
			first := true
			for _, part := range msg.Parts {
				switch part.Type {
				case relay.ContentPartTypeText:
					if first {
						appendText(label + part.Text)
						first = false
					} else {
						appendText(part.Text)
					}
				case relay.ContentPartTypeImage:
					if part.Base64 == "" {
						p.Warnings = append(p.Warnings, relay.Warning{
							Code:    "unsupported-image",
							Message: "image part without base64 data was dropped",
						})
						continue
					}
					p.Segments = append(p.Segments, protocol.InputSegment{
						Type: "image",
						Source: &protocol.ImageSource{
							Type:      "base64",
							MediaType: part.MimeType,
							Data:      part.Base64,
						},
					})
				default:
					p.Warnings = append(p.Warnings, relay.Warning{
						Code:    "unsupported-part",
						Message: fmt.Sprintf("content part type %q was dropped", part.Type),
					})
				}
			}
			continue
		}

		switch msg.Role {
		case relay.RoleAssistant:
			if msg.Content != "" {
				appendText(label + msg.Content)
			}
			if len(msg.ToolCalls) > 0 {
				p.Warnings = append(p.Warnings, relay.Warning{
					Code:    "tool-history-flattened",
					Message: "assistant tool calls were omitted from the prompt; the agent replays its own tool history",
				})
			}
		case relay.RoleTool:
			p.Warnings = append(p.Warnings, relay.Warning{
				Code:    "tool-history-flattened",
				Message: "tool result messages were omitted from the prompt; the agent replays its own tool history",
			})
		default:
			appendText(label + msg.Content)
		}
	}

	p.Text = text.String()
	if p.Text == "" && !p.HasImages() {
		return Prompt{}, relay.ErrEmptyPrompt
	}
	return p, nil
}

func roleLabel(role relay.Role) string {
	switch role {
	case relay.RoleAssistant:
		return "Assistant: "
	case relay.RoleSystem:
		return "System: "
	default:
		return ""
	}
}
