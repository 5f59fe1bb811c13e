// Package notify delivers best-effort text notifications about route matches.
//
// Delivery never blocks the HTTP response and its failures never reach the
// client: Deliver recovers every error (and panic), records it on the error
// log and moves on. Nothing is retried.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/getmockd/canaryd/pkg/metrics"
)

// Notifier sends a text message to an external messaging endpoint.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Nop is a Notifier that does nothing. It is used when no credentials are
// configured.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, string) error { return nil }

// IsNop reports whether n discards every message, so callers can skip
// delivery (and its accounting) altogether.
func IsNop(n Notifier) bool {
	switch n.(type) {
	case nil, Nop, *Nop:
		return true
	}
	return false
}

// Deliver sends message through n and isolates the outcome. A failure is
// logged once at error level and counted; it is never returned.
func Deliver(ctx context.Context, n Notifier, message string, log *slog.Logger, m *metrics.Metrics) {
	err := safeNotify(ctx, n, message)
	m.ObserveNotification(err)
	if err != nil {
		log.Error("failed to send notification", "error", err)
	}
}

func safeNotify(ctx context.Context, n Notifier, message string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()
	return n.Notify(ctx, message)
}
