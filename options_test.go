package relay

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		o := ApplyOptions()
		assert.Empty(t, o.Model)
		assert.Empty(t, o.SystemPrompt)
		assert.False(t, o.JSONMode())
		assert.False(t, o.PartialEvents)
		assert.Zero(t, o.MaxTurns)
	})

	t.Run("applies all options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		o := ApplyOptions(
			WithModel("model-x"),
			WithSystemPrompt("be brief"),
			WithPartialEvents(),
			WithMaxTurns(3),
			WithWorkDir("/tmp/work"),
			WithEnv(map[string]string{"KEY": "val"}),
			WithLogger(logger),
		)
		assert.Equal(t, "model-x", o.Model)
		assert.Equal(t, "be brief", o.SystemPrompt)
		assert.True(t, o.PartialEvents)
		assert.Equal(t, 3, o.MaxTurns)
		assert.Equal(t, "/tmp/work", o.WorkDir)
		assert.Equal(t, "val", o.Env["KEY"])
		assert.Same(t, logger, o.Log())
	})
}

func TestJSONMode(t *testing.T) {
	assert.False(t, ApplyOptions().JSONMode())
	assert.False(t, ApplyOptions(WithResponseFormat(ResponseFormatText)).JSONMode())
	assert.True(t, ApplyOptions(WithResponseFormat(ResponseFormatJSON)).JSONMode())

	o := ApplyOptions(WithResponseSchema([]byte(`{"type":"object"}`)))
	assert.True(t, o.JSONMode(), "a schema implies JSON mode")
	assert.Equal(t, ResponseFormatJSON, o.ResponseFormat)
}

func TestLogFallback(t *testing.T) {
	assert.NotNil(t, ApplyOptions().Log())
}
