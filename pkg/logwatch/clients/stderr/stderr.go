// Package stderr provides a client that prints captures to stderr in a
// human-readable format. Useful for development and debugging.
package stderr

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// Option configures the stderr client.
type Option func(*stderrConfig)

type stderrConfig struct {
	verbose bool
	out     io.Writer
}

// WithVerbose prints breadcrumbs, extra context and stack traces.
func WithVerbose() Option {
	return func(c *stderrConfig) {
		c.verbose = true
	}
}

// WithWriter redirects output (default: os.Stderr).
func WithWriter(w io.Writer) Option {
	return func(c *stderrConfig) {
		if w != nil {
			c.out = w
		}
	}
}

// stderrClient prints captures to a writer.
type stderrClient struct {
	verbose bool

	mu  sync.Mutex
	out io.Writer
}

// NewClient creates a client that writes to stderr.
func NewClient(opts ...Option) logwatch.Client {
	cfg := &stderrConfig{out: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrClient{
		verbose: cfg.verbose,
		out:     cfg.out,
	}
}

// Factory returns a ClientFactory that ignores the descriptor.
func Factory(opts ...Option) logwatch.ClientFactory {
	return func(string) (logwatch.Client, error) {
		return NewClient(opts...), nil
	}
}

// CaptureException prints err with its concrete type.
func (c *stderrClient) CaptureException(err error) (logwatch.EventID, error) {
	id := uuid.NewString()
	kind := logwatch.ErrorType(err)
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "[LOGWATCH] %s ERROR exception %s\n", timestamp(), kind)
	if msg != "" {
		fmt.Fprintf(c.out, "        Message: %s\n", msg)
	}
	fmt.Fprintf(c.out, "        Event: %s\n", id)
	fmt.Fprintf(c.out, "        Fingerprint: %s\n", logwatch.ExceptionFingerprint(err))

	if c.verbose {
		c.writeStack(logwatch.ErrorStack(err))
	}
	return logwatch.EventID(id), nil
}

// CaptureEvent prints a message capture.
func (c *stderrClient) CaptureEvent(record logwatch.CaptureRecord) (logwatch.EventID, error) {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "[LOGWATCH] %s %s message\n", timestamp(), strings.ToUpper(string(record.Level)))
	if record.Message != "" {
		fmt.Fprintf(c.out, "        Message: %s\n", record.Message)
	}
	fmt.Fprintf(c.out, "        Event: %s\n", id)
	fmt.Fprintf(c.out, "        Fingerprint: %s\n", logwatch.Fingerprint(record))

	if c.verbose {
		c.writeExtra(record.Extra)
	}
	return logwatch.EventID(id), nil
}

// AddBreadcrumb prints the breadcrumb in verbose mode only.
func (c *stderrClient) AddBreadcrumb(record logwatch.BreadcrumbRecord) error {
	if !c.verbose {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "[LOGWATCH] %s %s breadcrumb [%s] %s\n",
		timestamp(), strings.ToUpper(string(record.Level)), record.Category, record.Message)
	return nil
}

func (c *stderrClient) writeExtra(extra map[string]any) {
	if len(extra) == 0 {
		return
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(c.out, "        %s: %v\n", k, extra[k])
	}
}

func (c *stderrClient) writeStack(stack string) {
	if stack == "" {
		return
	}
	fmt.Fprintf(c.out, "        Stack trace:\n")
	for _, line := range strings.Split(strings.TrimRight(stack, "\n"), "\n") {
		fmt.Fprintf(c.out, "          %s\n", line)
	}
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}

// Flush is a no-op for the stderr client.
func (c *stderrClient) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for the stderr client.
func (c *stderrClient) Close() error {
	return nil
}
