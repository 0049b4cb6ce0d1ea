package sentry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strongdm/ai-cxdb-logwatch/pkg/logwatch"
)

// fakeHub records hub calls.
type fakeHub struct {
	mu          sync.Mutex
	exceptions  []error
	events      []*sentrygo.Event
	breadcrumbs []*sentrygo.Breadcrumb
	flushes     []time.Duration
	flushOK     bool
	dropEvents  bool
}

func (h *fakeHub) CaptureException(exception error) *sentrygo.EventID {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exceptions = append(h.exceptions, exception)
	id := sentrygo.EventID("exc-id")
	return &id
}

func (h *fakeHub) CaptureEvent(event *sentrygo.Event) *sentrygo.EventID {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	if h.dropEvents {
		return nil
	}
	id := sentrygo.EventID("evt-id")
	return &id
}

func (h *fakeHub) AddBreadcrumb(breadcrumb *sentrygo.Breadcrumb, hint *sentrygo.BreadcrumbHint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.breadcrumbs = append(h.breadcrumbs, breadcrumb)
}

func (h *fakeHub) Flush(timeout time.Duration) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushes = append(h.flushes, timeout)
	return h.flushOK
}

func TestClient_ImplementsClientInterface(t *testing.T) {
	var _ logwatch.Client = NewClient(&fakeHub{})
}

func TestClient_CaptureException(t *testing.T) {
	hub := &fakeHub{}
	client := NewClient(hub)
	exc := errors.New("db connection failed")

	id, err := client.CaptureException(exc)

	require.NoError(t, err)
	assert.Equal(t, logwatch.EventID("exc-id"), id)
	require.Len(t, hub.exceptions, 1)
	assert.Same(t, exc, hub.exceptions[0])
}

func TestClient_CaptureEvent(t *testing.T) {
	hub := &fakeHub{}
	client := NewClient(hub)
	extra := map[string]any{"user_id": 42}

	id, err := client.CaptureEvent(logwatch.CaptureRecord{
		Message: "checkout failed",
		Level:   logwatch.LevelFatal,
		Extra:   extra,
	})

	require.NoError(t, err)
	assert.Equal(t, logwatch.EventID("evt-id"), id)
	require.Len(t, hub.events, 1)
	assert.Equal(t, "checkout failed", hub.events[0].Message)
	assert.Equal(t, sentrygo.LevelFatal, hub.events[0].Level)
	assert.Equal(t, extra, hub.events[0].Extra)
}

func TestClient_CaptureEvent_DroppedByHub(t *testing.T) {
	client := NewClient(&fakeHub{dropEvents: true})

	id, err := client.CaptureEvent(logwatch.CaptureRecord{Message: "sampled out", Level: logwatch.LevelError})

	assert.NoError(t, err)
	assert.Empty(t, id)
}

func TestClient_AddBreadcrumb(t *testing.T) {
	hub := &fakeHub{}
	client := NewClient(hub)
	data := map[string]any{"route": "/login"}

	err := client.AddBreadcrumb(logwatch.BreadcrumbRecord{
		Level:    logwatch.BreadcrumbDebug,
		Category: logwatch.BreadcrumbCategory,
		Message:  "user logged in",
		Data:     data,
	})

	require.NoError(t, err)
	require.Len(t, hub.breadcrumbs, 1)
	crumb := hub.breadcrumbs[0]
	assert.Equal(t, sentrygo.LevelDebug, crumb.Level)
	assert.Equal(t, "log", crumb.Category)
	assert.Equal(t, "user logged in", crumb.Message)
	assert.Equal(t, data, crumb.Data)
	assert.False(t, crumb.Timestamp.IsZero())
}

func TestLevelConversion(t *testing.T) {
	for _, s := range logwatch.Severities() {
		assert.Equal(t, string(s.Level()), string(toSentryLevel(s.Level())), s.String())
		assert.Equal(t, string(s.BreadcrumbLevel()), string(toSentryBreadcrumbLevel(s.BreadcrumbLevel())), s.String())
	}
	assert.Equal(t, sentrygo.LevelInfo, toSentryLevel("bogus"))
	assert.Equal(t, sentrygo.LevelInfo, toSentryBreadcrumbLevel("bogus"))
}

func TestClient_Flush(t *testing.T) {
	hub := &fakeHub{flushOK: true}
	client := NewClient(hub, WithFlushTimeout(3*time.Second))

	require.NoError(t, client.Flush(context.Background()))
	require.Len(t, hub.flushes, 1)
	assert.Equal(t, 3*time.Second, hub.flushes[0])
}

func TestClient_Flush_UsesContextDeadline(t *testing.T) {
	hub := &fakeHub{flushOK: true}
	client := NewClient(hub, WithFlushTimeout(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, client.Flush(ctx))
	assert.LessOrEqual(t, hub.flushes[0], time.Second)
}

func TestClient_Flush_TimesOut(t *testing.T) {
	client := NewClient(&fakeHub{flushOK: false})

	assert.Error(t, client.Flush(context.Background()))
	assert.Error(t, client.Close())
}

func TestFactory_InvalidDSN(t *testing.T) {
	client, err := Factory()("not a dsn")

	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestFactory_ValidDSN(t *testing.T) {
	client, err := Factory(WithEnvironment("test"), WithRelease("v1"), WithSampleRate(0.5))("https://public@example.com/1")

	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestFactory_FeedsRouter(t *testing.T) {
	router := logwatch.New(logwatch.StaticDescriptor("not a dsn"), Factory())

	assert.NotPanics(t, func() {
		router.Handle(logwatch.LogEvent{Severity: logwatch.SeverityError, Message: "boom"})
	})
	assert.NoError(t, router.Flush(context.Background()))
}

// recordingHub builds a real sentry-go hub whose events are kept in memory.
func recordingHub(t *testing.T) (*sentrygo.Hub, func() []*sentrygo.Event) {
	t.Helper()
	var mu sync.Mutex
	var sent []*sentrygo.Event
	client, err := sentrygo.NewClient(sentrygo.ClientOptions{
		BeforeSend: func(event *sentrygo.Event, _ *sentrygo.EventHint) *sentrygo.Event {
			mu.Lock()
			defer mu.Unlock()
			sent = append(sent, event)
			return nil
		},
	})
	require.NoError(t, err)
	return sentrygo.NewHub(client, sentrygo.NewScope()), func() []*sentrygo.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]*sentrygo.Event(nil), sent...)
	}
}

func TestClient_PanicStackReachesSentry(t *testing.T) {
	hub, sent := recordingHub(t)
	router := logwatch.NewRouter(nil, logwatch.WithClient(NewClient(hub)))

	func() {
		defer logwatch.Recover(router)
		panic("worker died")
	}()

	events := sent()
	require.Len(t, events, 1)
	require.NotEmpty(t, events[0].Exception)
	exc := events[0].Exception[len(events[0].Exception)-1]
	assert.Equal(t, "*logwatch.PanicError", exc.Type)
	assert.Equal(t, "worker died", exc.Value)
	require.NotNil(t, exc.Stacktrace)

	// The trace is the panicking goroutine's, not the reporting path's.
	var sawPanicSite bool
	for _, frame := range exc.Stacktrace.Frames {
		assert.NotContains(t, frame.Function, "Router")
		if strings.Contains(frame.Function, "TestClient_PanicStackReachesSentry") {
			sawPanicSite = true
		}
	}
	assert.True(t, sawPanicSite, "frames = %+v", exc.Stacktrace.Frames)
}

func TestClient_ScrubbedExceptionReachesSentryRedacted(t *testing.T) {
	hub, sent := recordingHub(t)
	router := logwatch.NewRouter(nil, logwatch.WithClient(NewClient(hub)), logwatch.WithDefaultScrubbing())
	cause := errors.New("login failed: password=hunter2")

	router.Handle(logwatch.LogEvent{
		Severity: logwatch.SeverityError,
		Message:  "auth",
		Context:  map[string]any{logwatch.ExceptionKey: fmt.Errorf("handler: %w", cause)},
	})

	events := sent()
	require.Len(t, events, 1)
	for _, exc := range events[0].Exception {
		assert.NotContains(t, exc.Value, "hunter2")
	}
}
