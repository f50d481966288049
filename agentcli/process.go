package agentcli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/relaykit/relay"
)

// maxLineBytes bounds a single stream-json line. Tool results can be
// large, so the scanner buffer is generous.
const maxLineBytes = 10 * 1024 * 1024

// stderrCaptureBytes bounds how much stderr is retained for error
// context.
const stderrCaptureBytes = 16 * 1024

// process wraps one running agent CLI invocation.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner

	stderr   boundedBuffer
	stderrWG sync.WaitGroup

	closeOnce sync.Once
	waitOnce  sync.Once
	waitErr   error
}

// boundedBuffer retains up to a fixed number of bytes written to it.
type boundedBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if remaining := b.limit - len(b.buf); remaining > 0 {
		if len(p) > remaining {
			b.buf = append(b.buf, p[:remaining]...)
		} else {
			b.buf = append(b.buf, p...)
		}
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

// startProcess spawns the agent CLI. The context governs the process
// lifetime: cancellation kills it, which is how an external abort is
// propagated upstream.
func startProcess(ctx context.Context, binary string, args []string, dir string, env map[string]string) (*process, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	cmd.Env = mergeEnv(os.Environ(), env)

	p := &process{cmd: cmd}
	p.stderr.limit = stderrCaptureBytes

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdin: %w", err)
	}
	p.stdin = stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdout: %w", err)
	}
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	p.stdout = scanner

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("open stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		if execErr, ok := err.(*exec.Error); ok {
			return nil, &relay.AgentError{Message: fmt.Sprintf("agent binary %q not found", binary), Cause: execErr}
		}
		return nil, fmt.Errorf("start agent process: %w", err)
	}

	p.stderrWG.Add(1)
	go func() {
		defer p.stderrWG.Done()
		_, _ = io.Copy(&p.stderr, stderr)
	}()

	return p, nil
}

// mergeEnv overlays extra variables on a parent environment.
func mergeEnv(parent []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return parent
	}
	merged := append([]string(nil), parent...)
	for k, v := range extra {
		merged = append(merged, k+"="+v)
	}
	return merged
}

// writeLine marshals a message and writes it as one stream-json line.
func (p *process) writeLine(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal agent input: %w", err)
	}
	b = append(b, '\n')
	if _, err := p.stdin.Write(b); err != nil {
		return fmt.Errorf("write agent input: %w", err)
	}
	return nil
}

// closeStdin closes the input side. Safe to call more than once.
func (p *process) closeStdin() {
	p.closeOnce.Do(func() { _ = p.stdin.Close() })
}

// wait reaps the process once and returns the exit error, if any.
func (p *process) wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
		p.stderrWG.Wait()
	})
	return p.waitErr
}

// exitCode returns the process exit code after wait, or 0.
func (p *process) exitCode() int {
	if p.cmd.ProcessState == nil {
		return 0
	}
	return p.cmd.ProcessState.ExitCode()
}

// stderrText returns the captured stderr excerpt.
func (p *process) stderrText() string {
	return p.stderr.String()
}
