package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("system init", func(t *testing.T) {
		line := `{"type":"system","subtype":"init","session_id":"abc123","model":"claude-sonnet","cwd":"/work","tools":["Bash","Read"]}`
		msg, err := Parse([]byte(line))
		require.NoError(t, err)

		sys, ok := msg.(SystemMessage)
		require.True(t, ok)
		assert.True(t, sys.IsInit())
		assert.Equal(t, "abc123", sys.SessionID)
		assert.Equal(t, "claude-sonnet", sys.Model)
		assert.Equal(t, []string{"Bash", "Read"}, sys.Tools)
	})

	t.Run("system non-init", func(t *testing.T) {
		msg, err := Parse([]byte(`{"type":"system","subtype":"compact_boundary","session_id":"abc"}`))
		require.NoError(t, err)
		sys, ok := msg.(SystemMessage)
		require.True(t, ok)
		assert.False(t, sys.IsInit())
	})

	t.Run("assistant with blocks", func(t *testing.T) {
		line := `{"type":"assistant","session_id":"abc","message":{"id":"msg_1","role":"assistant","content":[{"type":"text","text":"hi"},{"type":"tool_use","id":"tu_1","name":"Bash","input":{"command":"ls"}}]}}`
		msg, err := Parse([]byte(line))
		require.NoError(t, err)

		am, ok := msg.(AssistantMessage)
		require.True(t, ok)
		blocks, ok := am.Message.Content.AsBlocks()
		require.True(t, ok)
		require.Len(t, blocks, 2)

		tb, ok := blocks[0].(TextBlock)
		require.True(t, ok)
		assert.Equal(t, "hi", tb.Text)

		tu, ok := blocks[1].(ToolUseBlock)
		require.True(t, ok)
		assert.Equal(t, "tu_1", tu.ID)
		assert.Equal(t, "Bash", tu.Name)
		assert.Equal(t, map[string]any{"command": "ls"}, tu.Input)
	})

	t.Run("assistant with string content", func(t *testing.T) {
		line := `{"type":"assistant","session_id":"abc","message":{"role":"assistant","content":"plain"}}`
		msg, err := Parse([]byte(line))
		require.NoError(t, err)

		am := msg.(AssistantMessage)
		s, ok := am.Message.Content.AsString()
		require.True(t, ok)
		assert.Equal(t, "plain", s)
	})

	t.Run("user tool result", func(t *testing.T) {
		line := `{"type":"user","session_id":"abc","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu_1","content":"output text","is_error":true}]}}`
		msg, err := Parse([]byte(line))
		require.NoError(t, err)

		um, ok := msg.(UserMessage)
		require.True(t, ok)
		blocks, ok := um.Message.Content.AsBlocks()
		require.True(t, ok)
		require.Len(t, blocks, 1)

		rb, ok := blocks[0].(ToolResultBlock)
		require.True(t, ok)
		assert.Equal(t, "tu_1", rb.ToolUseID)
		assert.True(t, rb.Failed())
		assert.Equal(t, "output text", rb.Content.Flatten())
	})

	t.Run("result", func(t *testing.T) {
		line := `{"type":"result","subtype":"success","session_id":"abc","result":"done","is_error":false,"num_turns":3,"duration_ms":4200,"total_cost_usd":0.05,"usage":{"input_tokens":100,"cache_creation_input_tokens":10,"cache_read_input_tokens":50,"output_tokens":200},"structured_output":{"k":"v"}}`
		msg, err := Parse([]byte(line))
		require.NoError(t, err)

		rm, ok := msg.(ResultMessage)
		require.True(t, ok)
		assert.Equal(t, ResultSubtypeSuccess, rm.Subtype)
		assert.Equal(t, 3, rm.NumTurns)
		assert.Equal(t, int64(4200), rm.DurationMs)
		assert.InDelta(t, 0.05, rm.TotalCostUSD, 1e-9)
		assert.Equal(t, 100, rm.Usage.InputTokens)
		assert.Equal(t, 50, rm.Usage.CacheReadInputTokens)
		assert.JSONEq(t, `{"k":"v"}`, string(rm.StructuredOutput))
	})

	t.Run("stream event", func(t *testing.T) {
		line := `{"type":"stream_event","session_id":"abc","event":{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"tok"}}}`
		msg, err := Parse([]byte(line))
		require.NoError(t, err)

		se, ok := msg.(StreamEvent)
		require.True(t, ok)

		inner, err := ParseStreamEvent(se.Event)
		require.NoError(t, err)
		delta, ok := inner.(ContentBlockDeltaEvent)
		require.True(t, ok)

		parsed, err := delta.ParsedDelta()
		require.NoError(t, err)
		td, ok := parsed.(TextDelta)
		require.True(t, ok)
		assert.Equal(t, "tok", td.Text)
	})

	t.Run("unknown type is skipped", func(t *testing.T) {
		msg, err := Parse([]byte(`{"type":"control_response","request_id":"r1"}`))
		require.NoError(t, err)
		assert.Nil(t, msg)
	})

	t.Run("malformed line fails", func(t *testing.T) {
		_, err := Parse([]byte(`{"type":"result","usage":`))
		require.Error(t, err)
		var syn *json.SyntaxError
		assert.ErrorAs(t, err, &syn, "parser detail survives for downstream classification")
	})
}

func TestParseDelta(t *testing.T) {
	t.Run("input_json_delta", func(t *testing.T) {
		d, err := ParseDelta(json.RawMessage(`{"type":"input_json_delta","partial_json":"{\"a\""}`))
		require.NoError(t, err)
		jd, ok := d.(InputJSONDelta)
		require.True(t, ok)
		assert.Equal(t, `{"a"`, jd.PartialJSON)
	})

	t.Run("thinking_delta", func(t *testing.T) {
		d, err := ParseDelta(json.RawMessage(`{"type":"thinking_delta","thinking":"hmm"}`))
		require.NoError(t, err)
		td, ok := d.(ThinkingDelta)
		require.True(t, ok)
		assert.Equal(t, "hmm", td.Thinking)
	})

	t.Run("unknown delta type is skipped", func(t *testing.T) {
		d, err := ParseDelta(json.RawMessage(`{"type":"signature_delta","signature":"xyz"}`))
		require.NoError(t, err)
		assert.Nil(t, d)
	})
}

func TestParseStreamEventInfoKinds(t *testing.T) {
	for _, typ := range []string{"message_start", "content_block_start", "content_block_stop", "message_delta", "message_stop"} {
		inner, err := ParseStreamEvent(json.RawMessage(`{"type":"` + typ + `"}`))
		require.NoError(t, err)
		info, ok := inner.(InfoEvent)
		require.True(t, ok, "kind %s", typ)
		assert.Equal(t, StreamEventType(typ), info.EventType())
	}

	inner, err := ParseStreamEvent(json.RawMessage(`{"type":"totally_new"}`))
	require.NoError(t, err)
	assert.Nil(t, inner)
}

func TestNewUserMessages(t *testing.T) {
	t.Run("plain text round-trips", func(t *testing.T) {
		b, err := json.Marshal(NewUserTextMessage("hello"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"user","message":{"role":"user","content":"hello"}}`, string(b))
	})

	t.Run("segments carry images", func(t *testing.T) {
		msg := NewUserSegmentMessage([]InputSegment{
			{Type: "text", Text: "describe this"},
			{Type: "image", Source: &ImageSource{Type: "base64", MediaType: "image/png", Data: "AAAA"}},
		})
		b, err := json.Marshal(msg)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"media_type":"image/png"`)
		assert.Contains(t, string(b), `"describe this"`)
	})
}
