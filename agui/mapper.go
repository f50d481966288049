// Package agui converts relay stream events to AG-UI protocol events
// for UI transports.
package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/relaykit/relay"
)

// RoleAssistant is the AG-UI role for model-authored messages.
const RoleAssistant = "assistant"

// Mapper converts relay events to AG-UI events for a single run.
// The Mapper is not safe for concurrent use - each run should have
// its own.
type Mapper struct {
	threadID string
	runID    string
}

// NewMapper creates a Mapper for a single run. Empty IDs are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{
		threadID: threadID,
		runID:    runID,
	}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// MapEvent converts a relay event to an AG-UI event. Returns nil for
// events with no AG-UI equivalent (reasoning blocks, response
// metadata, the tool_call summary that AG-UI already expresses through
// its args/end sequence).
func (m *Mapper) MapEvent(e relay.Event) events.Event {
	switch e.Type {
	case relay.EventStreamStart:
		return events.NewRunStartedEvent(m.threadID, m.runID)
	case relay.EventFinish:
		return events.NewRunFinishedEvent(m.threadID, m.runID)
	case relay.EventError:
		msg := "unknown error"
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return events.NewRunErrorEvent(msg)

	case relay.EventTextStart:
		return events.NewTextMessageStartEvent(
			e.BlockID,
			events.WithRole(RoleAssistant),
		)
	case relay.EventTextDelta:
		return events.NewTextMessageContentEvent(e.BlockID, e.Delta)
	case relay.EventTextEnd:
		return events.NewTextMessageEndEvent(e.BlockID)

	case relay.EventToolInputStart:
		if e.ToolCall == nil {
			return nil
		}
		return events.NewToolCallStartEvent(e.ToolCall.ID, e.ToolCall.Name)
	case relay.EventToolInputDelta:
		if e.ToolCall == nil {
			return nil
		}
		return events.NewToolCallArgsEvent(e.ToolCall.ID, e.Delta)
	case relay.EventToolInputEnd:
		if e.ToolCall == nil {
			return nil
		}
		return events.NewToolCallEndEvent(e.ToolCall.ID)
	case relay.EventToolResult, relay.EventToolError:
		if e.ToolCall == nil || e.ToolResult == nil {
			return nil
		}
		messageID := events.GenerateMessageID()
		return events.NewToolCallResultEvent(messageID, e.ToolCall.ID, e.ToolResult.Content)

	default:
		return nil
	}
}
