package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRoutes is returned when the document defines no routes.
var ErrNoRoutes = errors.New("no routes configured")

// ValidationError describes an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Validate checks the configuration and returns the first problem found.
func (c *Configuration) Validate() error {
	if len(c.Routes) == 0 {
		return ErrNoRoutes
	}

	for i := range c.Routes {
		if err := c.Routes[i].validate(i); err != nil {
			return err
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 0 and 65535, got %d", c.Server.Port),
		}
	}

	if c.Logging.MaxBackups < 0 {
		return &ValidationError{Field: "logging.max_backups", Message: "must not be negative"}
	}

	return c.Notifier.validate()
}

func (r *RouteConfig) validate(i int) error {
	field := fmt.Sprintf("routes[%d]", i)

	if r.Path == "" {
		return &ValidationError{Field: field + ".path", Message: "path is required"}
	}
	if !strings.HasPrefix(r.Path, "/") {
		return &ValidationError{
			Field:   field + ".path",
			Message: fmt.Sprintf("path must start with /, got %q", r.Path),
		}
	}
	if r.ResponseCode < MinResponseCode || r.ResponseCode > MaxResponseCode {
		return &ValidationError{
			Field:   field + ".response_code",
			Message: fmt.Sprintf("status code must be between %d and %d, got %d", MinResponseCode, MaxResponseCode, r.ResponseCode),
		}
	}
	return nil
}

func (n *NotifierConfig) validate() error {
	switch {
	case n.BotToken != "" && n.ChatID == "":
		return &ValidationError{Field: "notifier.chat_id", Message: "chat_id is required when bot_token is set"}
	case n.BotToken == "" && n.ChatID != "":
		return &ValidationError{Field: "notifier.bot_token", Message: "bot_token is required when chat_id is set"}
	}

	if n.Timeout < 0 {
		return &ValidationError{Field: "notifier.timeout", Message: "must not be negative"}
	}
	if n.Enabled() && !strings.HasPrefix(n.APIURL, "http://") && !strings.HasPrefix(n.APIURL, "https://") {
		return &ValidationError{
			Field:   "notifier.api_url",
			Message: fmt.Sprintf("must be an http(s) URL, got %q", n.APIURL),
		}
	}
	return nil
}
