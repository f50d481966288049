package relay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentParts(t *testing.T) {
	t.Run("NewTextPart", func(t *testing.T) {
		p := NewTextPart("hello")
		assert.Equal(t, ContentPartTypeText, p.Type)
		assert.Equal(t, "hello", p.Text)
	})

	t.Run("NewImagePart", func(t *testing.T) {
		p := NewImagePart("AAAA", "image/png")
		assert.Equal(t, ContentPartTypeImage, p.Type)
		assert.Equal(t, "AAAA", p.Base64)
		assert.Equal(t, "image/png", p.MimeType)
	})
}

func TestMessageHasParts(t *testing.T) {
	assert.False(t, Message{Role: RoleUser, Content: "hi"}.HasParts())
	assert.True(t, Message{Role: RoleUser, Parts: []ContentPart{NewTextPart("hi")}}.HasParts())
}

func TestGenerateMessageID(t *testing.T) {
	a := GenerateMessageID()
	b := GenerateMessageID()
	assert.True(t, strings.HasPrefix(a, "msg-"))
	assert.NotEqual(t, a, b)
}

func TestNewToolResultMessage(t *testing.T) {
	msg := NewToolResultMessage(
		ToolResult{ToolCallID: "tu-1", Content: "ok"},
		ToolResult{ToolCallID: "tu-2", Content: "fail", IsError: true},
	)
	assert.Equal(t, RoleTool, msg.Role)
	assert.Len(t, msg.ToolResults, 2)
	assert.True(t, msg.ToolResults[1].IsError)
}

func TestEventTerminal(t *testing.T) {
	assert.True(t, Event{Type: EventFinish}.Terminal())
	assert.True(t, Event{Type: EventError}.Terminal())
	assert.False(t, Event{Type: EventStreamStart}.Terminal())
	assert.False(t, Event{Type: EventTextDelta}.Terminal())
	assert.False(t, Event{Type: EventToolCall}.Terminal())
}
