package translate

import (
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/relaykit/relay"
)

// textTracker reconciles the two overlapping sources of assistant text:
// fine-grained partial-token events and coarse cumulative messages. At
// most one text block and one reasoning block are open at a time.
//
// Once any partial event has been seen, cumulative messages are treated
// as authoritative totals and only the suffix beyond the streamed
// length is emitted, measured in UTF-16 code units to match the
// upstream accounting.
type textTracker struct {
	jsonMode bool

	textBlockID string

	streamedLen int
	hasPartial  bool
	emittedAny  bool
	accumulated string

	reasoning []string
}

func newTextTracker(jsonMode bool) *textTracker {
	return &textTracker{jsonMode: jsonMode}
}

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// utf16Suffix returns the substring of s after the first units UTF-16
// code units. Returns "" when s is no longer than units.
func utf16Suffix(s string, units int) string {
	seen := 0
	for i, r := range s {
		if seen >= units {
			return s[i:]
		}
		seen += utf16.RuneLen(r)
	}
	return ""
}

// openText ensures a text block is open, emitting text_start once.
func (tx *textTracker) openText(emit Emit) error {
	if tx.textBlockID != "" {
		return nil
	}
	tx.textBlockID = "txt-" + uuid.New().String()
	return emit(relay.Event{Type: relay.EventTextStart, BlockID: tx.textBlockID})
}

// closeText closes the open text block, if any.
func (tx *textTracker) closeText(emit Emit) error {
	if tx.textBlockID == "" {
		return nil
	}
	id := tx.textBlockID
	tx.textBlockID = ""
	return emit(relay.Event{Type: relay.EventTextEnd, BlockID: id})
}

// emitDelta emits a text delta inside the open block, opening one if
// needed.
func (tx *textTracker) emitDelta(emit Emit, delta string) error {
	if delta == "" {
		return nil
	}
	if err := tx.openText(emit); err != nil {
		return err
	}
	tx.emittedAny = true
	return emit(relay.Event{Type: relay.EventTextDelta, BlockID: tx.textBlockID, Delta: delta})
}

// StreamToken handles a plain-text partial token. In JSON mode nothing
// is surfaced; the token is buffered so the payload can be emitted
// whole at the end rather than leaking partial invalid JSON as text.
func (tx *textTracker) StreamToken(emit Emit, token string) error {
	tx.hasPartial = true
	tx.accumulated += token
	tx.streamedLen += utf16Len(token)
	if tx.jsonMode {
		return nil
	}
	return tx.emitDelta(emit, token)
}

// StreamFragment handles a structured-output fragment. Fragments are
// visible only in JSON mode; empty fragments are skipped.
func (tx *textTracker) StreamFragment(emit Emit, fragment string) error {
	if fragment == "" {
		return nil
	}
	tx.hasPartial = true
	tx.accumulated += fragment
	tx.streamedLen += utf16Len(fragment)
	if !tx.jsonMode {
		return nil
	}
	return tx.emitDelta(emit, fragment)
}

// Cumulative handles the text of a cumulative assistant message. When
// partial events already delivered a prefix, only the unseen suffix is
// emitted; an exact duplicate emits nothing. With no partial events the
// text is an incremental addition and is emitted directly. Either way
// the running total is updated; in JSON mode nothing is surfaced.
func (tx *textTracker) Cumulative(emit Emit, text string) error {
	var delta string
	if tx.hasPartial {
		delta = utf16Suffix(text, tx.streamedLen)
		if delta == "" {
			return nil
		}
		tx.accumulated = text
		tx.streamedLen = utf16Len(text)
	} else {
		delta = text
		tx.accumulated += text
	}
	if tx.jsonMode {
		return nil
	}
	return tx.emitDelta(emit, delta)
}

// Reasoning opens, fills, and closes a reasoning block for a single
// chunk. Reasoning is never accumulated across messages.
func (tx *textTracker) Reasoning(emit Emit, chunk string) error {
	id := "rsn-" + uuid.New().String()
	if err := emit(relay.Event{Type: relay.EventReasoningStart, BlockID: id}); err != nil {
		return err
	}
	if err := emit(relay.Event{Type: relay.EventReasoningDelta, BlockID: id, Delta: chunk}); err != nil {
		return err
	}
	if err := emit(relay.Event{Type: relay.EventReasoningEnd, BlockID: id}); err != nil {
		return err
	}
	tx.reasoning = append(tx.reasoning, chunk)
	return nil
}

// Streamed reports whether any visible text delta has been emitted.
// Tokens buffered silently in JSON mode do not count.
func (tx *textTracker) Streamed() bool { return tx.emittedAny }

// Accumulated returns the full text seen so far.
func (tx *textTracker) Accumulated() string { return tx.accumulated }
