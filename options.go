package relay

import "log/slog"

// ResponseFormat controls the shape of the model output.
type ResponseFormat string

const (
	// ResponseFormatText requests free-form text output (default).
	ResponseFormatText ResponseFormat = "text"
	// ResponseFormatJSON requests a JSON payload. Partial output is
	// buffered and surfaced once, at the end, never token-by-token.
	ResponseFormatJSON ResponseFormat = "json"
)

// Options contains configuration for a generation request.
type Options struct {
	// Model selects the upstream model. Empty uses the agent's default.
	Model string
	// SystemPrompt is prepended to the conversation.
	SystemPrompt string
	// ResponseFormat selects text or JSON output.
	ResponseFormat ResponseFormat
	// ResponseSchema constrains JSON output to a caller-supplied JSON
	// Schema. Implies ResponseFormatJSON.
	ResponseSchema []byte
	// PartialEvents opts in to fine-grained partial-token events from
	// the upstream agent, enabling token-by-token text deltas.
	PartialEvents bool
	// MaxTurns bounds the number of agentic turns. Zero means no bound.
	MaxTurns int
	// WorkDir is the working directory for the agent process.
	WorkDir string
	// Env contains extra environment variables merged over the parent
	// environment when spawning the agent process.
	Env map[string]string
	// Logger receives debug and warning output. Defaults to slog.Default.
	Logger *slog.Logger
}

// JSONMode returns true when the request asks for JSON output.
func (o *Options) JSONMode() bool {
	return o.ResponseFormat == ResponseFormatJSON || len(o.ResponseSchema) > 0
}

// Log returns the configured logger, falling back to slog.Default.
func (o *Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Option is a functional option for configuring generation requests.
type Option func(*Options)

// WithModel sets the model to use for the request.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithSystemPrompt sets the system prompt for the request.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithResponseFormat sets the response format.
func WithResponseFormat(format ResponseFormat) Option {
	return func(o *Options) {
		o.ResponseFormat = format
	}
}

// WithResponseSchema constrains JSON output to the given JSON Schema.
func WithResponseSchema(schema []byte) Option {
	return func(o *Options) {
		o.ResponseFormat = ResponseFormatJSON
		o.ResponseSchema = schema
	}
}

// WithPartialEvents opts in to token-by-token partial events.
func WithPartialEvents() Option {
	return func(o *Options) {
		o.PartialEvents = true
	}
}

// WithMaxTurns bounds the number of agentic turns.
func WithMaxTurns(n int) Option {
	return func(o *Options) {
		o.MaxTurns = n
	}
}

// WithWorkDir sets the working directory for the agent process.
func WithWorkDir(dir string) Option {
	return func(o *Options) {
		o.WorkDir = dir
	}
}

// WithEnv merges extra environment variables into the agent process
// environment.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithLogger sets the logger for the request.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// ApplyOptions applies functional options to an Options struct.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
