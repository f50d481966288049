package translate

import (
	"github.com/relaykit/relay"
	"github.com/relaykit/relay/protocol"
)

// usageAccumulator gathers token counts, cost, duration, and session
// identity across a run. Session identity is set from the init message
// and refreshed from the terminal result.
type usageAccumulator struct {
	raw        relay.RawUsage
	costUSD    float64
	durationMS int64
	sessionID  string
}

// setSession records session identity if present.
func (ua *usageAccumulator) setSession(id string) {
	if id != "" {
		ua.sessionID = id
	}
}

// record captures the terminal result's accounting.
func (ua *usageAccumulator) record(m protocol.ResultMessage) {
	ua.raw = relay.RawUsage{
		InputTokens:              m.Usage.InputTokens,
		OutputTokens:             m.Usage.OutputTokens,
		CacheCreationInputTokens: m.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     m.Usage.CacheReadInputTokens,
	}
	ua.costUSD = m.TotalCostUSD
	ua.durationMS = m.DurationMs
	ua.setSession(m.SessionID)
}

// Usage returns the aggregated token counts: input is the sum of raw
// input, cache-creation, and cache-read tokens.
func (ua *usageAccumulator) Usage() relay.Usage {
	input := ua.raw.InputTokens + ua.raw.CacheCreationInputTokens + ua.raw.CacheReadInputTokens
	return relay.Usage{
		InputTokens:  input,
		OutputTokens: ua.raw.OutputTokens,
		TotalTokens:  input + ua.raw.OutputTokens,
	}
}

// Metadata assembles the provider metadata for the terminal event.
func (ua *usageAccumulator) Metadata(truncated bool, warnings []relay.Warning, reasoning []string) *relay.Metadata {
	return &relay.Metadata{
		SessionID:  ua.sessionID,
		CostUSD:    ua.costUSD,
		DurationMS: ua.durationMS,
		RawUsage:   ua.raw,
		Truncated:  truncated,
		Warnings:   warnings,
		Reasoning:  reasoning,
	}
}
