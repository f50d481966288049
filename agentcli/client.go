// Package agentcli runs the agent CLI process and exposes it as a
// relay.ModelProvider. It builds the CLI invocation, feeds the
// converted prompt over stdin, and pipes the process's stream-json
// output through the translator.
package agentcli

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/relaykit/relay"
	"github.com/relaykit/relay/prompt"
	"github.com/relaykit/relay/protocol"
	"github.com/relaykit/relay/translate"
)

// DefaultBinary is the agent CLI looked up on PATH when no explicit
// binary is configured.
const DefaultBinary = "claude"

// Client implements relay.ModelProvider backed by the agent CLI.
// The embedded translator retains the upstream session id across
// calls, so consecutive calls on one Client continue one conversation.
// Calls on the same Client must not overlap.
type Client struct {
	binary     string
	model      string
	log        *slog.Logger
	translator *translate.Translator
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBinary sets the agent CLI binary path.
func WithBinary(path string) ClientOption {
	return func(c *Client) {
		c.binary = path
	}
}

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a client with the given options.
func New(opts ...ClientOption) *Client {
	c := &Client{
		binary: DefaultBinary,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.translator = translate.New(c.log)
	return c
}

// SessionID returns the upstream session id captured by the most
// recent run, for conversation resumption.
func (c *Client) SessionID() string {
	return c.translator.SessionID()
}

// buildArgs assembles the CLI invocation for one request.
func (c *Client) buildArgs(o *relay.Options) []string {
	args := []string{
		"--print",
		"--verbose",
		"--input-format", "stream-json",
		"--output-format", "stream-json",
	}
	if o.PartialEvents {
		args = append(args, "--include-partial-messages")
	}
	model := o.Model
	if model == "" {
		model = c.model
	}
	if model != "" {
		args = append(args, "--model", model)
	}
	if o.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(o.MaxTurns))
	}
	if len(o.ResponseSchema) > 0 {
		args = append(args, "--json-schema", string(o.ResponseSchema))
	}
	if sid := c.translator.SessionID(); sid != "" {
		args = append(args, "--resume", sid)
	}
	return args
}

// start converts the prompt, spawns the process, feeds the input
// message, and arranges for stdin to stay open until the run resolves.
func (c *Client) start(ctx context.Context, messages []relay.Message, o *relay.Options) (*process, *translate.Run, prompt.Prompt, error) {
	pr, err := prompt.Convert(messages, o.SystemPrompt)
	if err != nil {
		return nil, nil, prompt.Prompt{}, err
	}

	proc, err := startProcess(ctx, c.binary, c.buildArgs(o), o.WorkDir, o.Env)
	if err != nil {
		return nil, nil, prompt.Prompt{}, err
	}

	run := c.translator.NewRun(translate.Config{
		JSONMode:      o.JSONMode(),
		PartialEvents: o.PartialEvents,
		Warnings:      pr.Warnings,
	})

	var msg protocol.UserTextMessage
	if pr.HasImages() {
		msg = protocol.NewUserSegmentMessage(pr.Segments)
	} else {
		msg = protocol.NewUserTextMessage(pr.Text)
	}
	if err := proc.writeLine(msg); err != nil {
		proc.closeStdin()
		_ = proc.wait()
		return nil, nil, prompt.Prompt{}, err
	}

	// The agent requires its input stream to stay open until the run
	// completes; close it only once the translator resolves the run.
	go func() {
		<-run.Done()
		proc.closeStdin()
	}()

	return proc, run, pr, nil
}

// finishErr upgrades a failed run to a classified process error when
// the agent exited nonzero, preserving cancellation verbatim.
func (c *Client) finishErr(ctx context.Context, proc *process, pr prompt.Prompt, runErr error) error {
	proc.closeStdin()
	waitErr := proc.wait()

	if runErr == nil {
		if waitErr != nil {
			c.log.Warn("agent process exited nonzero after a completed run",
				"exit_code", proc.exitCode(), "stderr", firstLine(proc.stderrText()))
		}
		return nil
	}
	if ctx.Err() != nil {
		return runErr
	}

	var agentErr *relay.AgentError
	if errors.As(runErr, &agentErr) && waitErr != nil && proc.exitCode() != 0 {
		return classifyExit(proc.exitCode(), proc.stderrText(), excerpt(pr.Text))
	}
	return runErr
}

// Generate sends a conversation and returns a single accumulated
// response.
func (c *Client) Generate(ctx context.Context, messages []relay.Message, opts ...relay.Option) (*relay.Response, error) {
	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}
	o := relay.ApplyOptions(opts...)

	proc, run, pr, err := c.start(ctx, messages, o)
	if err != nil {
		return nil, err
	}

	resp, runErr := run.Collect(ctx, &lineSource{p: proc})
	if err := c.finishErr(ctx, proc, pr, runErr); err != nil {
		return nil, err
	}
	return resp, nil
}

// Stream sends a conversation and returns an ordered push-stream of
// lifecycle events ending in exactly one terminal event.
func (c *Client) Stream(ctx context.Context, messages []relay.Message, opts ...relay.Option) (<-chan relay.Event, error) {
	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}
	o := relay.ApplyOptions(opts...)

	proc, run, pr, err := c.start(ctx, messages, o)
	if err != nil {
		return nil, err
	}

	ch := make(chan relay.Event)
	go func() {
		defer close(ch)

		emit := func(ev relay.Event) error {
			select {
			case ch <- ev:
				return nil
			case <-ctx.Done():
				return context.Cause(ctx)
			}
		}

		runErr := run.Drive(ctx, &lineSource{p: proc}, emit)
		if err := c.finishErr(ctx, proc, pr, runErr); err != nil {
			select {
			case ch <- relay.Event{Type: relay.EventError, Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

var _ relay.ModelProvider = (*Client)(nil)
