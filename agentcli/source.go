package agentcli

import (
	"context"
	"fmt"
	"io"

	"github.com/relaykit/relay/protocol"
	"github.com/relaykit/relay/translate"
)

// lineSource adapts the process stdout scanner to translate.Source.
type lineSource struct {
	p *process
}

var _ translate.Source = (*lineSource)(nil)

// Next returns the next parsed message. Empty lines and unknown
// message kinds yield (nil, nil); the end of output yields io.EOF.
// Parse errors pass through with the original parser message intact so
// the truncation classifier can inspect them.
func (s *lineSource) Next(ctx context.Context) (protocol.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.p.stdout.Scan() {
		if err := s.p.stdout.Err(); err != nil {
			return nil, fmt.Errorf("read agent output: %w", err)
		}
		return nil, io.EOF
	}
	line := s.p.stdout.Bytes()
	if len(line) == 0 {
		return nil, nil
	}
	return protocol.Parse(line)
}
