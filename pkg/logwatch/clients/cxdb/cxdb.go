// Package cxdb provides a client that persists captures to cxdb as
// SystemMessage items, with the recent breadcrumb trail attached.
package cxdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"
	cxdtypes "github.com/strongdm/ai-cxdb/clients/go/types"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// CXDBClient is the minimal interface for cxdb client operations.
// The real *cxdb.Client satisfies this interface.
type CXDBClient interface {
	CreateContext(ctx context.Context, baseTurnID uint64) (*cxdbclient.ContextHead, error)
	AppendTurn(ctx context.Context, req *cxdbclient.AppendRequest) (*cxdbclient.AppendResult, error)
}

// Option configures the cxdb client.
type Option func(*cxdbConfig)

type cxdbConfig struct {
	labels         []string
	clientTag      string
	maxBreadcrumbs int
	writeTimeout   time.Duration
	systemState    bool
}

// WithLabels sets the labels attached to the capture context.
func WithLabels(labels []string) Option {
	return func(c *cxdbConfig) {
		c.labels = labels
	}
}

// WithClientTag sets the client tag attached to the capture context.
func WithClientTag(tag string) Option {
	return func(c *cxdbConfig) {
		if tag != "" {
			c.clientTag = tag
		}
	}
}

// WithMaxBreadcrumbs sets how many breadcrumbs are kept for the next capture (default: 50).
func WithMaxBreadcrumbs(n int) Option {
	return func(c *cxdbConfig) {
		if n >= 0 {
			c.maxBreadcrumbs = n
		}
	}
}

// WithWriteTimeout bounds each cxdb round trip (default: 5s).
func WithWriteTimeout(d time.Duration) Option {
	return func(c *cxdbConfig) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithSystemState toggles attaching process metrics to captures (default: on).
func WithSystemState(enabled bool) Option {
	return func(c *cxdbConfig) {
		c.systemState = enabled
	}
}

// cxdbClient writes captures into a single cxdb context, created on first use.
type cxdbClient struct {
	client       CXDBClient
	labels       []string
	clientTag    string
	writeTimeout time.Duration
	systemState  bool
	startTime    time.Time

	mu        sync.Mutex
	contextID uint64
	hasCtx    bool
	labelled  bool
	trail     *breadcrumbTrail
}

// NewClient creates a logwatch client backed by cxdb.
func NewClient(client CXDBClient, opts ...Option) logwatch.Client {
	cfg := &cxdbConfig{
		labels:         []string{"error", "logwatch"},
		clientTag:      "logwatch",
		maxBreadcrumbs: 50,
		writeTimeout:   5 * time.Second,
		systemState:    true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &cxdbClient{
		client:       client,
		labels:       cfg.labels,
		clientTag:    cfg.clientTag,
		writeTimeout: cfg.writeTimeout,
		systemState:  cfg.systemState,
		startTime:    time.Now(),
		trail:        &breadcrumbTrail{maxSize: cfg.maxBreadcrumbs},
	}
}

// capture is the cxdb-side view of a single capture.
type capture struct {
	eventID       string
	timestamp     time.Time
	level         logwatch.Level
	message       string
	fingerprint   string
	exceptionType string
	stack         string
	extra         map[string]any
}

// CaptureException persists err as an error-level capture.
func (c *cxdbClient) CaptureException(err error) (logwatch.EventID, error) {
	rec := capture{
		level:       logwatch.LevelError,
		fingerprint: logwatch.ExceptionFingerprint(err),
	}
	if err != nil {
		rec.message = err.Error()
		rec.exceptionType = logwatch.ErrorType(err)
		rec.stack = logwatch.ErrorStack(err)
	}
	return c.write(rec)
}

// CaptureEvent persists a message capture.
func (c *cxdbClient) CaptureEvent(record logwatch.CaptureRecord) (logwatch.EventID, error) {
	return c.write(capture{
		level:       record.Level,
		message:     record.Message,
		fingerprint: logwatch.Fingerprint(record),
		extra:       record.Extra,
	})
}

// AddBreadcrumb keeps the breadcrumb locally; it is written with the next capture.
func (c *cxdbClient) AddBreadcrumb(record logwatch.BreadcrumbRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trail.Add(newBreadcrumbEntry(record, time.Now()))
	return nil
}

func (c *cxdbClient) write(rec capture) (logwatch.EventID, error) {
	rec.eventID = uuid.NewString()
	rec.timestamp = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()

	// Serializes context creation and keeps turns in capture order.
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasCtx {
		head, err := c.client.CreateContext(ctx, 0)
		if err != nil {
			return "", fmt.Errorf("create context: %w", err)
		}
		c.contextID = head.ContextID
		c.hasCtx = true
	}

	var state *logwatch.SystemState
	if c.systemState {
		state = logwatch.CaptureSystemState(c.startTime)
	}
	item := c.buildConversationItem(rec, c.trail.GetAll(), state, !c.labelled)

	payload, err := cxdbclient.EncodeMsgpack(item)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	req := &cxdbclient.AppendRequest{
		ContextID:      c.contextID,
		ParentTurnID:   0,
		TypeID:         cxdtypes.TypeIDConversationItem,
		TypeVersion:    cxdtypes.TypeVersionConversationItem,
		Payload:        payload,
		IdempotencyKey: rec.eventID,
	}
	if _, err := c.client.AppendTurn(ctx, req); err != nil {
		return "", fmt.Errorf("append turn: %w", err)
	}

	c.labelled = true
	// The trail belongs to the capture that carried it.
	c.trail = &breadcrumbTrail{maxSize: c.trail.maxSize}
	return logwatch.EventID(rec.eventID), nil
}

// buildConversationItem creates a canonical ConversationItem for a capture.
func (c *cxdbClient) buildConversationItem(rec capture, crumbs []breadcrumbEntry, state *logwatch.SystemState, first bool) *cxdtypes.ConversationItem {
	item := &cxdtypes.ConversationItem{
		ItemType:  cxdtypes.ItemTypeSystem,
		Status:    cxdtypes.ItemStatusComplete,
		Timestamp: rec.timestamp.UnixMilli(),
		ID:        rec.eventID,
		System: &cxdtypes.SystemMessage{
			Kind:    cxdtypes.SystemKindError,
			Title:   buildTitle(rec),
			Content: buildDetails(rec, crumbs, state),
		},
	}

	// cxdb expects context metadata on the first turn.
	if first {
		item.ContextMetadata = &cxdtypes.ContextMetadata{
			Labels:    c.labels,
			ClientTag: c.clientTag,
		}
	}
	return item
}

// buildTitle renders "label: truncated_message", at most 100 bytes, cut on
// rune boundaries.
func buildTitle(rec capture) string {
	label := rec.exceptionType
	if label == "" {
		label = string(rec.level)
	}

	title := label
	if rec.message != "" {
		const maxMsgLen = 80
		msg := rec.message
		if len(msg) > maxMsgLen {
			msg = logwatch.TruncateUTF8(msg, maxMsgLen) + "..."
		}
		title = label + ": " + msg
	}

	if len(title) > 100 {
		title = logwatch.TruncateUTF8(title, 97) + "..."
	}
	return title
}

// buildDetails encodes the capture as JSON for SystemMessage.Content.
func buildDetails(rec capture, crumbs []breadcrumbEntry, state *logwatch.SystemState) string {
	details := map[string]any{
		"event_id":    rec.eventID,
		"level":       string(rec.level),
		"message":     rec.message,
		"fingerprint": rec.fingerprint,
		"breadcrumbs": crumbs,
	}
	if rec.exceptionType != "" {
		details["exception_type"] = rec.exceptionType
	}
	if rec.stack != "" {
		details["stack_trace"] = rec.stack
	}
	if len(rec.extra) > 0 {
		details["extra"] = jsonSafe(rec.extra)
	}
	if state != nil {
		details["system_state"] = state.Map()
	}

	jsonBytes, err := json.Marshal(details)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to encode details: %s"}`, err)
	}
	return string(jsonBytes)
}

// jsonSafe copies m, replacing values that would not survive json.Marshal
// with their printed form. Errors are rendered through Error().
func jsonSafe(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case error:
			out[k] = val.Error()
			continue
		case map[string]any:
			out[k] = jsonSafe(val)
			continue
		}
		if _, err := json.Marshal(v); err != nil {
			out[k] = fmt.Sprintf("%v", v)
			continue
		}
		out[k] = v
	}
	return out
}

// Flush is a no-op; writes are synchronous.
func (c *cxdbClient) Flush(ctx context.Context) error {
	return nil
}

// Close closes the underlying cxdb client when it owns a connection.
func (c *cxdbClient) Close() error {
	if closer, ok := c.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
