package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/canaryd/pkg/config"
	"github.com/getmockd/canaryd/pkg/httputil"
	"github.com/getmockd/canaryd/pkg/logging"
	"github.com/getmockd/canaryd/pkg/metrics"
	"github.com/getmockd/canaryd/pkg/notify"
	"github.com/getmockd/canaryd/pkg/routes"
	"github.com/google/uuid"
)

// NotFoundBody is the response body for paths missing from the route table.
const NotFoundBody = httputil.NotFoundBody

// Handler answers requests from the route table and reports matches.
type Handler struct {
	table          *routes.Table
	notifier       notify.Notifier
	log            *slog.Logger
	metrics        *metrics.Metrics
	clientIPHeader string
	notifyTimeout  time.Duration

	inflight sync.WaitGroup
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger that receives match lines and
// notification failures.
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithHandlerNotifier sets the notifier that receives match lines.
func WithHandlerNotifier(n notify.Notifier) HandlerOption {
	return func(h *Handler) {
		if n != nil {
			h.notifier = n
		}
	}
}

// WithHandlerMetrics sets the metrics sink.
func WithHandlerMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithClientIPHeader sets the proxy header that carries the client address.
// An empty name always uses the transport peer address.
func WithClientIPHeader(name string) HandlerOption {
	return func(h *Handler) {
		h.clientIPHeader = name
	}
}

// WithNotifyTimeout bounds each notification attempt.
func WithNotifyTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.notifyTimeout = d
		}
	}
}

// NewHandler creates a Handler for table.
func NewHandler(table *routes.Table, opts ...HandlerOption) *Handler {
	h := &Handler{
		table:          table,
		notifier:       notify.Nop{},
		log:            logging.Nop(),
		clientIPHeader: config.DefaultClientIPHeader,
		notifyTimeout:  notify.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler. Any method is accepted.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	view := NewRequestView(r, h.clientIPHeader)

	route, ok := h.table.Lookup(view.Path)
	if !ok {
		h.metrics.ObserveMiss()
		httputil.WriteNotFound(w)
		return
	}

	message := FormatMatch(view, route)
	h.log.Warn(message,
		"request_id", uuid.NewString(),
		"path", view.Path,
		"status", route.StatusCode,
	)
	h.metrics.ObserveMatch(route.Path)
	h.dispatch(message)

	httputil.WriteText(w, route.StatusCode, route.Body)
}

// dispatch hands message to the notifier without waiting for it. The
// request context is not used because it ends when ServeHTTP returns.
// Nothing is dispatched or counted when notifications are disabled.
func (h *Handler) dispatch(message string) {
	if notify.IsNop(h.notifier) {
		return
	}
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.notifyTimeout)
		defer cancel()
		notify.Deliver(ctx, h.notifier, message, h.log, h.metrics)
	}()
}

// Wait blocks until every dispatched notification has finished.
func (h *Handler) Wait() {
	h.inflight.Wait()
}

// WaitContext is Wait bounded by ctx.
func (h *Handler) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FormatMatch composes the line that is logged and notified for a match.
func FormatMatch(view RequestView, route routes.Route) string {
	return fmt.Sprintf("Matched route | Path: %s | Response: %s | Code: %d | IP: %s | User-Agent: %s | Comment: %s",
		view.Path, route.Body, route.StatusCode, view.ClientAddress, view.UserAgent, route.Comment)
}
