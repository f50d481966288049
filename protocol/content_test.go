package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleContent(t *testing.T) {
	t.Run("string content", func(t *testing.T) {
		var fc FlexibleContent
		require.NoError(t, json.Unmarshal([]byte(`"hello"`), &fc))
		assert.True(t, fc.IsString())

		s, ok := fc.AsString()
		require.True(t, ok)
		assert.Equal(t, "hello", s)

		_, ok = fc.AsBlocks()
		assert.False(t, ok)
		assert.Equal(t, "hello", fc.Flatten())
	})

	t.Run("block content", func(t *testing.T) {
		var fc FlexibleContent
		require.NoError(t, json.Unmarshal([]byte(`[{"type":"text","text":"a"},{"type":"text","text":"b"}]`), &fc))
		assert.False(t, fc.IsString())

		blocks, ok := fc.AsBlocks()
		require.True(t, ok)
		assert.Len(t, blocks, 2)
		assert.Equal(t, "ab", fc.Flatten())
	})

	t.Run("empty content", func(t *testing.T) {
		var fc FlexibleContent
		assert.False(t, fc.IsString())
		_, ok := fc.AsBlocks()
		assert.False(t, ok)
		assert.Equal(t, "", fc.Flatten())
	})

	t.Run("marshal round-trip", func(t *testing.T) {
		fc := NewStringContent("x")
		b, err := json.Marshal(fc)
		require.NoError(t, err)
		assert.Equal(t, `"x"`, string(b))
	})
}

func TestContentBlocksSkipUnknown(t *testing.T) {
	var blocks ContentBlocks
	data := `[{"type":"text","text":"keep"},{"type":"server_tool_use","id":"x"},{"type":"thinking","thinking":"t"}]`
	require.NoError(t, json.Unmarshal([]byte(data), &blocks))
	require.Len(t, blocks, 2)
	assert.IsType(t, TextBlock{}, blocks[0])
	assert.IsType(t, ThinkingBlock{}, blocks[1])
}

func TestToolResultBlockFailed(t *testing.T) {
	truth := true
	falsity := false
	assert.True(t, ToolResultBlock{IsError: &truth}.Failed())
	assert.False(t, ToolResultBlock{IsError: &falsity}.Failed())
	assert.False(t, ToolResultBlock{}.Failed())
}

func TestToolResultBlockNestedContent(t *testing.T) {
	line := `{"type":"tool_result","tool_use_id":"tu_1","content":[{"type":"text","text":"line one"},{"type":"text","text":" line two"}]}`
	block, err := UnmarshalContentBlock(json.RawMessage(line))
	require.NoError(t, err)

	rb, ok := block.(ToolResultBlock)
	require.True(t, ok)
	assert.Equal(t, "line one line two", rb.Content.Flatten())
}
