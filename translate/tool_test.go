package translate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaykit/relay"
)

func TestSerializeInput(t *testing.T) {
	assert.Equal(t, "{}", serializeInput(nil))
	assert.Equal(t, `{"a":1}`, serializeInput(map[string]any{"a": 1}))
	assert.Equal(t, `{"a":1,"b":"x"}`, serializeInput(map[string]any{"b": "x", "a": 1}))
}

func TestToolTrackerObserve(t *testing.T) {
	t.Run("generates an id when the block has none", func(t *testing.T) {
		var evs []relay.Event
		tt := newToolTracker(testLogger(), nil)
		require.NoError(t, tt.observe(collectEmit(&evs), "", "mystery", nil))

		require.NotEmpty(t, evs)
		require.NotNil(t, evs[0].ToolCall)
		assert.True(t, strings.HasPrefix(evs[0].ToolCall.ID, "toolu-"))
	})

	t.Run("name can be filled in by a later sighting", func(t *testing.T) {
		var evs []relay.Event
		emit := collectEmit(&evs)
		tt := newToolTracker(testLogger(), nil)

		require.NoError(t, tt.observe(emit, "tu-1", "", nil))
		assert.Equal(t, relay.UnknownToolName, tt.name("tu-1"))

		require.NoError(t, tt.observe(emit, "tu-1", "read_file", nil))
		assert.Equal(t, "read_file", tt.name("tu-1"))
	})

	t.Run("input_start fires once per id", func(t *testing.T) {
		var evs []relay.Event
		emit := collectEmit(&evs)
		tt := newToolTracker(testLogger(), nil)

		require.NoError(t, tt.observe(emit, "tu-1", "f", map[string]any{"a": 1}))
		require.NoError(t, tt.observe(emit, "tu-1", "f", map[string]any{"a": 1}))
		assert.Len(t, ofType(evs, relay.EventToolInputStart), 1)
	})

	t.Run("deltas above the suppress threshold are dropped", func(t *testing.T) {
		var evs []relay.Event
		emit := collectEmit(&evs)
		tt := newToolTracker(testLogger(), nil)

		big := strings.Repeat("z", deltaSuppressBytes+1)
		require.NoError(t, tt.observe(emit, "tu-1", "f", map[string]any{"data": big}))
		assert.Empty(t, ofType(evs, relay.EventToolInputDelta))

		// The full input still arrives on the call event.
		state := tt.states["tu-1"]
		require.NoError(t, tt.finalize(emit, state))
		calls := ofType(evs, relay.EventToolCall)
		require.Len(t, calls, 1)
		assert.Contains(t, calls[0].ToolCall.Arguments, big)
	})
}

func TestToolTrackerFinalizeIdempotent(t *testing.T) {
	var evs []relay.Event
	emit := collectEmit(&evs)
	tt := newToolTracker(testLogger(), nil)

	require.NoError(t, tt.observe(emit, "tu-1", "f", map[string]any{"a": 1}))
	state := tt.states["tu-1"]
	require.NoError(t, tt.finalize(emit, state))
	require.NoError(t, tt.finalize(emit, state))
	require.NoError(t, tt.finalizeAll(emit))

	assert.Len(t, ofType(evs, relay.EventToolInputEnd), 1)
	assert.Len(t, ofType(evs, relay.EventToolCall), 1)
}

func TestToolTrackerFinalizeAllOrder(t *testing.T) {
	var evs []relay.Event
	emit := collectEmit(&evs)
	tt := newToolTracker(testLogger(), nil)

	require.NoError(t, tt.observe(emit, "tu-1", "first", nil))
	require.NoError(t, tt.observe(emit, "tu-2", "second", nil))
	require.NoError(t, tt.observe(emit, "tu-3", "third", nil))
	require.NoError(t, tt.finalizeAll(emit))

	calls := ofType(evs, relay.EventToolCall)
	require.Len(t, calls, 3)
	assert.Equal(t, "tu-1", calls[0].ToolCall.ID)
	assert.Equal(t, "tu-2", calls[1].ToolCall.ID)
	assert.Equal(t, "tu-3", calls[2].ToolCall.ID)
}

func TestToolTrackerResult(t *testing.T) {
	t.Run("results recur after a single call", func(t *testing.T) {
		var evs []relay.Event
		emit := collectEmit(&evs)
		tt := newToolTracker(testLogger(), nil)

		require.NoError(t, tt.observe(emit, "tu-1", "f", nil))
		require.NoError(t, tt.result(emit, "tu-1", "", "r1", false))
		require.NoError(t, tt.result(emit, "tu-1", "", "r2", true))

		assert.Len(t, ofType(evs, relay.EventToolCall), 1)
		assert.Len(t, ofType(evs, relay.EventToolResult), 1)
		assert.Len(t, ofType(evs, relay.EventToolError), 1)
	})

	t.Run("orphan with a name keeps it", func(t *testing.T) {
		var evs []relay.Event
		tt := newToolTracker(testLogger(), nil)
		require.NoError(t, tt.result(collectEmit(&evs), "tu-x", "bash", "done", false))

		calls := ofType(evs, relay.EventToolCall)
		require.Len(t, calls, 1)
		assert.Equal(t, "bash", calls[0].ToolCall.Name)
		assert.Equal(t, "{}", calls[0].ToolCall.Arguments)
	})
}
