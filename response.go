package relay

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	// FinishStop indicates the model finished naturally.
	FinishStop FinishReason = "stop"
	// FinishLength indicates the output was cut off by a length or
	// transport limit, including recovered mid-emission truncation.
	FinishLength FinishReason = "length"
	// FinishError indicates generation ended because of an error.
	FinishError FinishReason = "error"
)

// Usage contains token usage information for a request.
type Usage struct {
	// InputTokens is the sum of raw input, cache-creation, and
	// cache-read token counts.
	InputTokens int `json:"inputTokens"`
	// OutputTokens is the number of generated tokens.
	OutputTokens int `json:"outputTokens"`
	// TotalTokens is InputTokens + OutputTokens.
	TotalTokens int `json:"totalTokens"`
}

// RawUsage carries the upstream token counts before aggregation.
type RawUsage struct {
	InputTokens              int `json:"inputTokens"`
	OutputTokens             int `json:"outputTokens"`
	CacheCreationInputTokens int `json:"cacheCreationInputTokens"`
	CacheReadInputTokens     int `json:"cacheReadInputTokens"`
}

// Warning is a non-fatal condition surfaced to the caller alongside
// normal output rather than as an error.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata carries provider-specific details attached to the terminal
// finish event and to the accumulated Response.
type Metadata struct {
	// SessionID identifies the upstream agent session. It persists across
	// calls on the same provider instance to support conversation resumption.
	SessionID string `json:"sessionId,omitempty"`
	// CostUSD is the reported cost of the run.
	CostUSD float64 `json:"costUsd"`
	// DurationMS is the reported wall-clock duration of the run.
	DurationMS int64 `json:"durationMs"`
	// RawUsage is the upstream token accounting before aggregation.
	RawUsage RawUsage `json:"rawUsage"`
	// Truncated is true when the run ended because the upstream process
	// terminated mid-emission and the output was recovered as-is.
	Truncated bool `json:"truncated,omitempty"`
	// Warnings accumulated over the run.
	Warnings []Warning `json:"warnings,omitempty"`
	// Reasoning contains reasoning traces, if any were produced.
	Reasoning []string `json:"reasoning,omitempty"`
}

// Response represents a complete accumulated response.
type Response struct {
	Content      string       `json:"content,omitempty"`
	FinishReason FinishReason `json:"finishReason,omitempty"`
	Usage        Usage        `json:"usage"`
	// ToolCalls contains any tool invocation requests from the model.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	// ToolResults contains tool results echoed back by the upstream agent,
	// which executes tools itself and reports their outcomes.
	ToolResults []ToolResult `json:"toolResults,omitempty"`
	// Metadata carries provider-specific details for this run.
	Metadata Metadata `json:"metadata"`
}
