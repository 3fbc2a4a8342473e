// Package exec runs external crawler commands and parses their candidate
// item output.
package exec

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/fwojciec/digest"
)

// DefaultTimeout bounds how long a crawler command may run.
const DefaultTimeout = 5 * time.Minute

// Ensure Adapter implements digest.SourceAdapter at compile time.
var _ digest.SourceAdapter = (*Adapter)(nil)

// Adapter produces candidate items by running a configured shell command.
// The command must print a JSON array of candidate items on stdout.
type Adapter struct {
	command string
	timeout time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout overrides the command timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// NewAdapter creates an Adapter for the given shell command.
func NewAdapter(command string, opts ...Option) *Adapter {
	a := &Adapter{command: command, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Produce runs the command and parses its output. A non-zero exit is fatal
// for the source run; the stderr tail is included in the error.
func (a *Adapter) Produce(ctx context.Context) ([]digest.CandidateItem, error) {
	if strings.TrimSpace(a.command) == "" {
		return nil, digest.Errorf(digest.EINVALID, "crawler command required")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", a.command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, digest.Errorf(digest.EUNAVAILABLE, "crawler command failed: %v: %s",
			err, tail(stderr.String(), 500))
	}

	return digest.ParseCandidates(stdout.Bytes())
}

// tail returns at most n trailing bytes of s.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
