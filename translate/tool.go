package translate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/relaykit/relay"
)

// Tool input size policy. Granular deltas are suppressed above
// deltaSuppressBytes; inputs above warnBytes log a performance warning;
// inputs above maxInputBytes abort the run.
const (
	deltaSuppressBytes = 10 * 1024
	warnInputBytes     = 100 * 1024
	maxInputBytes      = 1 << 20
)

// toolState tracks one tool invocation through its lifecycle:
// input open, input closed, called, then any number of results/errors.
// Each flag transitions false to true exactly once; callEmitted implies
// inputClosed implies inputStarted.
type toolState struct {
	id           string
	name         string
	lastInput    string
	inputStarted bool
	inputClosed  bool
	callEmitted  bool
	sizeWarned   bool
}

// toolTracker manages the per-ID tool lifecycle state machines.
// Multiple invocations may be logically open at once; each is tracked
// independently by its opaque ID.
type toolTracker struct {
	states map[string]*toolState
	order  []string
	log    *slog.Logger
	warn   func(relay.Warning)
}

func newToolTracker(log *slog.Logger, warn func(relay.Warning)) *toolTracker {
	return &toolTracker{
		states: make(map[string]*toolState),
		log:    log,
		warn:   warn,
	}
}

// serializeInput renders a tool input payload canonically, with a
// best-effort string fallback if serialization fails.
func serializeInput(input map[string]any) string {
	if input == nil {
		return "{}"
	}
	b, err := json.Marshal(input)
	if err != nil {
		return fmt.Sprintf("%v", input)
	}
	return string(b)
}

// observe drives the state machine for a tool-use fragment from a
// cumulative assistant message. The first sighting of an ID opens its
// input and emits tool_input_start; repeated sightings emit forward-only
// input deltas when the new serialization extends the previous one.
func (tt *toolTracker) observe(emit Emit, id, name string, input map[string]any) error {
	if id == "" {
		id = "toolu-" + uuid.New().String()
	}

	state, ok := tt.states[id]
	if !ok {
		state = &toolState{id: id, name: relay.UnknownToolName}
		tt.states[id] = state
		tt.order = append(tt.order, id)
	}
	// Later messages may supply a name an earlier one lacked.
	if name != "" && !state.callEmitted {
		state.name = name
	}

	if !state.inputStarted {
		state.inputStarted = true
		if err := emit(relay.Event{
			Type:     relay.EventToolInputStart,
			ToolCall: &relay.ToolCall{ID: state.id, Name: state.name},
		}); err != nil {
			return err
		}
	}

	serialized := serializeInput(input)
	if len(serialized) > maxInputBytes {
		return &relay.ToolInputSizeError{ToolCallID: state.id, Size: len(serialized), Limit: maxInputBytes}
	}
	if len(serialized) > warnInputBytes && !state.sizeWarned {
		state.sizeWarned = true
		tt.log.Warn("large tool input", "tool", state.name, "id", state.id, "bytes", len(serialized))
		if tt.warn != nil {
			tt.warn(relay.Warning{
				Code:    "tool-input-size",
				Message: fmt.Sprintf("tool %s input is %d bytes", state.name, len(serialized)),
			})
		}
	}

	if !state.inputClosed && serialized != state.lastInput {
		// Forward-only deltas: emit the appended suffix when the new
		// serialization is a strict prefix-extension of the old one.
		// Replacements and oversized payloads skip the granular delta;
		// the full input is still carried on the tool_call event.
		if strings.HasPrefix(serialized, state.lastInput) &&
			len(serialized) <= deltaSuppressBytes && len(state.lastInput) <= deltaSuppressBytes {
			if err := emit(relay.Event{
				Type:     relay.EventToolInputDelta,
				Delta:    serialized[len(state.lastInput):],
				ToolCall: &relay.ToolCall{ID: state.id, Name: state.name},
			}); err != nil {
				return err
			}
		}
	}
	state.lastInput = serialized
	return nil
}

// synthesize creates tracking state for a tool first seen via an
// orphaned result/error, emitting the input-start event it never had so
// the caller observes no ordering gap.
func (tt *toolTracker) synthesize(emit Emit, id, name string) (*toolState, error) {
	if name == "" {
		name = relay.UnknownToolName
	}
	state := &toolState{id: id, name: name, inputStarted: true}
	tt.states[id] = state
	tt.order = append(tt.order, id)
	err := emit(relay.Event{
		Type:     relay.EventToolInputStart,
		ToolCall: &relay.ToolCall{ID: id, Name: state.name},
	})
	return state, err
}

// finalize closes the input and emits the tool_call event with the last
// known full input. Idempotent: only the first call per ID emits.
func (tt *toolTracker) finalize(emit Emit, state *toolState) error {
	if !state.inputClosed {
		state.inputClosed = true
		if err := emit(relay.Event{
			Type:     relay.EventToolInputEnd,
			ToolCall: &relay.ToolCall{ID: state.id, Name: state.name},
		}); err != nil {
			return err
		}
	}
	if !state.callEmitted {
		state.callEmitted = true
		args := state.lastInput
		if args == "" {
			args = "{}"
		}
		if err := emit(relay.Event{
			Type:     relay.EventToolCall,
			ToolCall: &relay.ToolCall{ID: state.id, Name: state.name, Arguments: args},
		}); err != nil {
			return err
		}
	}
	return nil
}

// result emits a tool_result or tool_error event, first ensuring the
// call event has fired. Any number of results may follow one call.
func (tt *toolTracker) result(emit Emit, id, name, content string, isErr bool) error {
	state, ok := tt.states[id]
	if !ok {
		var err error
		state, err = tt.synthesize(emit, id, name)
		if err != nil {
			return err
		}
	} else if name != "" && !state.callEmitted {
		state.name = name
	}

	if err := tt.finalize(emit, state); err != nil {
		return err
	}

	typ := relay.EventToolResult
	if isErr {
		typ = relay.EventToolError
	}
	return emit(relay.Event{
		Type:       typ,
		ToolCall:   &relay.ToolCall{ID: state.id, Name: state.name, Arguments: state.lastInput},
		ToolResult: &relay.ToolResult{ToolCallID: state.id, Content: content, IsError: isErr},
	})
}

// name returns the tracked tool name for an ID, if any.
func (tt *toolTracker) name(id string) string {
	if state, ok := tt.states[id]; ok {
		return state.name
	}
	return ""
}

// finalizeAll force-finalizes every tool whose call event has not fired,
// in first-seen order. Called at end of run before the terminal event.
func (tt *toolTracker) finalizeAll(emit Emit) error {
	for _, id := range tt.order {
		if err := tt.finalize(emit, tt.states[id]); err != nil {
			return err
		}
	}
	return nil
}
