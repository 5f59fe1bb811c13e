package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/getmockd/canaryd/pkg/logging"
	"github.com/getmockd/canaryd/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type funcNotifier func(ctx context.Context, message string) error

func (f funcNotifier) Notify(ctx context.Context, message string) error { return f(ctx, message) }

func captureLogger() (*bytes.Buffer, *slog.Logger) {
	buf := &bytes.Buffer{}
	return buf, logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatText, Output: buf})
}

func TestDeliver_Success(t *testing.T) {
	t.Parallel()

	buf, log := captureLogger()
	m := metrics.New()
	var got string
	n := funcNotifier(func(_ context.Context, msg string) error {
		got = msg
		return nil
	})

	Deliver(context.Background(), n, "hello", log, m)

	assert.Equal(t, "hello", got)
	assert.Empty(t, buf.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(metrics.ResultSent)))
}

func TestDeliver_FailureLoggedOnce(t *testing.T) {
	t.Parallel()

	buf, log := captureLogger()
	m := metrics.New()
	n := funcNotifier(func(context.Context, string) error { return errors.New("connection refused") })

	Deliver(context.Background(), n, "hello", log, m)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "level=ERROR"))
	assert.Contains(t, out, "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues(metrics.ResultFailed)))
}

func TestDeliver_RecoversPanic(t *testing.T) {
	t.Parallel()

	buf, log := captureLogger()
	n := funcNotifier(func(context.Context, string) error { panic("kaboom") })

	assert.NotPanics(t, func() {
		Deliver(context.Background(), n, "hello", log, nil)
	})
	assert.Contains(t, buf.String(), "notifier panicked: kaboom")
}

func TestNop(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Nop{}.Notify(context.Background(), "ignored"))
}

func TestIsNop(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNop(nil))
	assert.True(t, IsNop(Nop{}))
	assert.True(t, IsNop(&Nop{}))
	assert.False(t, IsNop(funcNotifier(func(context.Context, string) error { return nil })))

	tg, err := NewTelegram("http://localhost", "token", "chat")
	if assert.NoError(t, err) {
		assert.False(t, IsNop(tg))
	}
}
