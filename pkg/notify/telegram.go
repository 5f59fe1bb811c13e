package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getmockd/canaryd/pkg/util"
)

// DefaultTimeout bounds a single sendMessage call when none is configured.
const DefaultTimeout = 10 * time.Second

// MaxMessageLength is the Bot API limit on sendMessage text, in UTF-16 code
// units. Longer messages are truncated before sending.
const MaxMessageLength = 4096

// maxDrainBytes caps how much of a reply body is read before closing it.
const maxDrainBytes = 64 << 10

// ErrMissingCredentials is returned by NewTelegram when the bot token or the
// chat id is empty.
var ErrMissingCredentials = errors.New("telegram bot token and chat id are required")

// StatusError is returned when the Bot API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("telegram API returned status %d", e.StatusCode)
}

// Telegram posts messages to a chat through the Telegram Bot API.
type Telegram struct {
	endpoint string
	chatID   string
	client   *http.Client
}

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*Telegram)

// WithHTTPClient replaces the HTTP client used for sends.
func WithHTTPClient(c *http.Client) TelegramOption {
	return func(t *Telegram) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) TelegramOption {
	return func(t *Telegram) {
		if d > 0 {
			t.client.Timeout = d
		}
	}
}

// NewTelegram creates a notifier that posts to
// {apiURL}/bot{token}/sendMessage.
func NewTelegram(apiURL, token, chatID string, opts ...TelegramOption) (*Telegram, error) {
	if token == "" || chatID == "" {
		return nil, ErrMissingCredentials
	}
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}

	t := &Telegram{
		endpoint: strings.TrimSuffix(apiURL, "/") + "/bot" + token + "/sendMessage",
		chatID:   chatID,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Notify implements Notifier. The reply body is drained but not inspected;
// only the status code decides success.
func (t *Telegram) Notify(ctx context.Context, message string) error {
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", util.TruncateUTF16(message, MaxMessageLength))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", redact(err))
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// redact strips the request URL, which embeds the bot token, from transport
// errors before they reach the log.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
