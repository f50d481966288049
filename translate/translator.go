// Package translate turns the upstream agent's native message stream
// into the standard output event stream.
//
// The translator is a single-consumer, stateful pass over one upstream
// iterator per run. It reconciles the two overlapping sources of
// assistant content (fine-grained partial-token events and coarse
// cumulative messages), tracks a concurrent multi-tool-call lifecycle
// keyed by opaque IDs, and degrades gracefully when the upstream
// process terminates mid-JSON-emission.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/relaykit/relay"
	"github.com/relaykit/relay/protocol"
)

// Emit delivers one output event to the consumer. Emit may block to
// respect downstream backpressure; a non-nil return aborts the run.
type Emit func(relay.Event) error

// Source yields upstream messages one at a time. Next returns io.EOF
// when the stream ends without a terminal result, and returns parse
// errors unwrapped enough that the original parser message survives
// for truncation classification.
type Source interface {
	Next(ctx context.Context) (protocol.Message, error)
}

// Translator converts upstream agent streams into output event
// streams. The session id it captures persists across runs to support
// conversation resumption; everything else is per-run state. Callers
// must serialize runs per instance.
type Translator struct {
	sessionID string
	log       *slog.Logger
}

// New creates a Translator. A nil logger falls back to slog.Default.
func New(log *slog.Logger) *Translator {
	if log == nil {
		log = slog.Default()
	}
	return &Translator{log: log}
}

// SessionID returns the most recently observed upstream session id.
func (t *Translator) SessionID() string { return t.sessionID }

// Config carries the per-run mode flags.
type Config struct {
	// JSONMode buffers text and surfaces the JSON payload once, at the
	// end, instead of token-by-token.
	JSONMode bool
	// PartialEvents indicates the upstream was asked to stream
	// fine-grained partial-token events.
	PartialEvents bool
	// Warnings accumulated while preparing the request; carried on the
	// stream_start event and on the terminal metadata.
	Warnings []relay.Warning
}

// Run is a single pass over one upstream stream.
type Run struct {
	t   *Translator
	cfg Config

	tools    *toolTracker
	text     *textTracker
	usage    usageAccumulator
	warnings []relay.Warning

	done     chan struct{}
	doneOnce sync.Once
}

// NewRun prepares a run with fresh per-run state.
func (t *Translator) NewRun(cfg Config) *Run {
	r := &Run{
		t:        t,
		cfg:      cfg,
		text:     newTextTracker(cfg.JSONMode),
		warnings: append([]relay.Warning(nil), cfg.Warnings...),
		done:     make(chan struct{}),
	}
	r.tools = newToolTracker(t.log, func(w relay.Warning) {
		r.warnings = append(r.warnings, w)
	})
	return r
}

// Done is closed when the terminal result has been consumed (or the
// run has failed). The input-feeding side awaits it before closing the
// upstream input, which must stay open until the output side finishes.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

func (r *Run) signalDone() {
	r.doneOnce.Do(func() { close(r.done) })
}

// Drive consumes the upstream source to completion, emitting the
// ordered output event sequence. On success exactly one finish event
// has been emitted and Drive returns nil; on failure no finish event
// has been emitted and the error is returned for the caller to surface
// as the single terminal error. Cancellation is returned verbatim.
func (r *Run) Drive(ctx context.Context, src Source, emit Emit) error {
	defer r.signalDone()

	if ctx.Err() != nil {
		return cancelCause(ctx)
	}

	if err := emit(relay.Event{Type: relay.EventStreamStart, Warnings: r.warnings}); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return cancelCause(ctx)
		}

		msg, err := src.Next(ctx)
		if err != nil {
			return r.fail(ctx, emit, err)
		}
		if msg == nil {
			continue
		}

		terminal, err := r.handle(emit, msg)
		if err != nil {
			return r.fail(ctx, emit, err)
		}
		if terminal {
			return nil
		}
	}
}

// cancelCause surfaces the cancellation reason rather than a generic
// wrapper, so callers can distinguish cancellation from other failures.
func cancelCause(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return ctx.Err()
}

// fail applies the error propagation policy: cancellation passes
// through verbatim, recoverable truncation degrades to a finish event,
// and malformed-but-not-truncated output becomes a hard error carrying
// the original parser message.
func (r *Run) fail(ctx context.Context, emit Emit, err error) error {
	if ctx.Err() != nil {
		return cancelCause(ctx)
	}
	if errors.Is(err, io.EOF) {
		return &relay.AgentError{Message: "agent stream ended without a result message"}
	}
	if IsTruncation(err, r.text.Accumulated()) {
		r.t.log.Warn("recovering truncated agent output", "buffered", len(r.text.Accumulated()), "cause", err)
		return r.finishTruncated(emit)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &relay.MalformedOutputError{Cause: err}
	}
	return err
}

// handle dispatches one upstream message. The bool result is true once
// the terminal result has been processed and the finish event emitted.
func (r *Run) handle(emit Emit, msg protocol.Message) (bool, error) {
	switch m := msg.(type) {
	case protocol.SystemMessage:
		return false, r.handleSystem(emit, m)
	case protocol.StreamEvent:
		return false, r.handleStreamEvent(emit, m)
	case protocol.AssistantMessage:
		return false, r.handleAssistant(emit, m)
	case protocol.UserMessage:
		return false, r.handleUser(emit, m)
	case protocol.ResultMessage:
		return r.handleResult(emit, m)
	default:
		r.t.log.Debug("ignoring unknown upstream message", "type", msg.MsgType())
		return false, nil
	}
}

func (r *Run) handleSystem(emit Emit, m protocol.SystemMessage) error {
	if !m.IsInit() {
		return nil
	}
	r.t.sessionID = m.SessionID
	r.usage.setSession(m.SessionID)
	return emit(relay.Event{
		Type:      relay.EventResponseMetadata,
		SessionID: m.SessionID,
		Model:     m.Model,
	})
}

func (r *Run) handleStreamEvent(emit Emit, m protocol.StreamEvent) error {
	inner, err := protocol.ParseStreamEvent(m.Event)
	if err != nil {
		return err
	}
	delta, ok := inner.(protocol.ContentBlockDeltaEvent)
	if !ok {
		return nil
	}
	parsed, err := delta.ParsedDelta()
	if err != nil {
		return err
	}
	switch d := parsed.(type) {
	case protocol.TextDelta:
		return r.text.StreamToken(emit, d.Text)
	case protocol.InputJSONDelta:
		return r.text.StreamFragment(emit, d.PartialJSON)
	default:
		// Thinking deltas and other subtypes are informational here;
		// reasoning is surfaced from the cumulative assistant message.
		return nil
	}
}

func (r *Run) handleAssistant(emit Emit, m protocol.AssistantMessage) error {
	if s, ok := m.Message.Content.AsString(); ok {
		return r.text.Cumulative(emit, s)
	}
	blocks, ok := m.Message.Content.AsBlocks()
	if !ok {
		return nil
	}
	for _, block := range blocks {
		switch b := block.(type) {
		case protocol.TextBlock:
			if err := r.text.Cumulative(emit, b.Text); err != nil {
				return err
			}
		case protocol.ThinkingBlock:
			// A block switch terminates the open text block.
			if err := r.text.closeText(emit); err != nil {
				return err
			}
			if err := r.text.Reasoning(emit, b.Thinking); err != nil {
				return err
			}
		case protocol.ToolUseBlock:
			if err := r.text.closeText(emit); err != nil {
				return err
			}
			if err := r.tools.observe(emit, b.ID, b.Name, b.Input); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Run) handleUser(emit Emit, m protocol.UserMessage) error {
	blocks, ok := m.Message.Content.AsBlocks()
	if !ok {
		return nil
	}
	for _, block := range blocks {
		rb, ok := block.(protocol.ToolResultBlock)
		if !ok {
			continue
		}
		name := rb.Name
		if name == "" {
			name = r.tools.name(rb.ToolUseID)
		}
		if err := r.tools.result(emit, rb.ToolUseID, name, rb.Content.Flatten(), rb.Failed()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Run) handleResult(emit Emit, m protocol.ResultMessage) (bool, error) {
	if m.Subtype == protocol.ResultSubtypeErrorMaxStructuredRetries {
		return false, &relay.StructuredOutputError{Message: m.Result}
	}

	r.usage.record(m)
	r.t.sessionID = r.usage.sessionID

	// Resolve the run before the finish event goes out so the input
	// side can close the upstream channel without waiting on the
	// consumer to drain.
	r.signalDone()

	if err := r.tools.finalizeAll(emit); err != nil {
		return false, err
	}
	if err := r.resolveFinalText(emit, m.StructuredOutput); err != nil {
		return false, err
	}

	reason := relay.FinishStop
	switch {
	case m.Subtype == protocol.ResultSubtypeErrorMaxTurns:
		reason = relay.FinishLength
	case m.IsError:
		reason = relay.FinishError
	}

	err := emit(relay.Event{
		Type:         relay.EventFinish,
		FinishReason: reason,
		Usage:        r.usage.Usage(),
		Metadata:     r.usage.Metadata(false, r.warnings, r.text.reasoning),
	})
	return err == nil, err
}

// resolveFinalText closes out the text channel at end of run. A
// separately supplied structured-output payload takes precedence over
// accumulated free text, but content already streamed via fragments is
// never re-emitted: if streaming delivered anything, the terminal
// handling only closes the block and the payload is ignored.
func (r *Run) resolveFinalText(emit Emit, structured json.RawMessage) error {
	if r.cfg.JSONMode && !r.text.Streamed() {
		payload := r.text.Accumulated()
		if len(structured) > 0 {
			payload = canonicalJSON(structured)
		}
		if err := r.text.emitDelta(emit, payload); err != nil {
			return err
		}
	}
	return r.text.closeText(emit)
}

// canonicalJSON re-serializes a raw payload through the decoder to
// normalize whitespace; on decode failure the raw text is used as-is.
func canonicalJSON(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(b)
}

// finishTruncated degrades a mid-emission upstream death to a
// successful finish: everything accumulated so far is finalized and
// surfaced, the finish reason signals a length cutoff, and the
// metadata marks the run truncated.
func (r *Run) finishTruncated(emit Emit) error {
	r.signalDone()
	r.warnings = append(r.warnings, relay.Warning{
		Code:    "truncated",
		Message: "agent output ended mid-emission; returning content recovered so far",
	})

	if err := r.tools.finalizeAll(emit); err != nil {
		return err
	}
	if err := r.resolveFinalText(emit, nil); err != nil {
		return err
	}

	return emit(relay.Event{
		Type:         relay.EventFinish,
		FinishReason: relay.FinishLength,
		Usage:        r.usage.Usage(),
		Metadata:     r.usage.Metadata(true, r.warnings, r.text.reasoning),
	})
}

// Collect runs the same pass as Drive but discards intermediate
// lifecycle events, returning only the accumulated content and the
// terminal outcome.
func (r *Run) Collect(ctx context.Context, src Source) (*relay.Response, error) {
	resp := &relay.Response{}
	var content []byte
	emit := func(ev relay.Event) error {
		switch ev.Type {
		case relay.EventTextDelta:
			content = append(content, ev.Delta...)
		case relay.EventToolCall:
			resp.ToolCalls = append(resp.ToolCalls, *ev.ToolCall)
		case relay.EventToolResult, relay.EventToolError:
			resp.ToolResults = append(resp.ToolResults, *ev.ToolResult)
		case relay.EventFinish:
			resp.FinishReason = ev.FinishReason
			resp.Usage = ev.Usage
			if ev.Metadata != nil {
				resp.Metadata = *ev.Metadata
			}
		}
		return nil
	}
	if err := r.Drive(ctx, src, emit); err != nil {
		return nil, err
	}
	resp.Content = string(content)
	return resp, nil
}
