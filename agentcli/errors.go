package agentcli

import (
	"strings"

	"github.com/relaykit/relay"
)

// authExitCode is the exit code sentinel the agent uses for credential
// failures.
const authExitCode = 401

var authPatterns = []string{
	"invalid api key",
	"authentication",
	"unauthorized",
	"not logged in",
}

var timeoutPatterns = []string{
	"timed out",
	"timeout",
	"etimedout",
}

var transportPatterns = []string{
	"connection refused",
	"connection reset",
	"econnrefused",
	"econnreset",
	"enotfound",
	"socket hang up",
}

// classifyExit turns a nonzero agent exit into a typed error. Auth is
// detected via the exit-code sentinel and message patterns; timeouts
// and transport failures are retryable; everything else is the
// non-retryable catch-all carrying exit code, stderr, and a prompt
// excerpt.
func classifyExit(exitCode int, stderr, promptExcerpt string) error {
	lower := strings.ToLower(stderr)

	if exitCode == authExitCode || matchesAny(lower, authPatterns) {
		return &relay.AuthError{Message: firstLine(stderr), ExitCode: exitCode}
	}
	if matchesAny(lower, timeoutPatterns) {
		return &relay.TimeoutError{Message: firstLine(stderr)}
	}
	if matchesAny(lower, transportPatterns) {
		return &relay.TransportError{Message: firstLine(stderr)}
	}
	return &relay.AgentError{
		Message:       "agent process failed",
		ExitCode:      exitCode,
		Stderr:        stderr,
		PromptExcerpt: promptExcerpt,
	}
}

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// excerpt returns a short prefix of the prompt for error context.
func excerpt(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
