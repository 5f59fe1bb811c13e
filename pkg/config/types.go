package config

import (
	"net"
	"strconv"
	"time"
)

// Default values applied by ApplyDefaults.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultClientIPHeader  = "CF-Connecting-IP"
	DefaultReadTimeout     = 30
	DefaultWriteTimeout    = 30
	DefaultShutdownTimeout = 10
	DefaultLogFile         = "server.log"
	DefaultLogMaxBackups   = 30
	DefaultTelegramAPIURL  = "https://api.telegram.org"
	DefaultNotifyTimeout   = 10
)

// Configuration is the startup document. It is built once, before the
// listener binds, and treated as read-only afterwards.
type Configuration struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
	Notifier NotifierConfig `json:"notifier" yaml:"notifier"`
	Routes   []RouteConfig  `json:"routes" yaml:"routes"`

	// BotToken and ChatID may be set at the top level of the document.
	// They are folded into Notifier when the nested fields are empty.
	BotToken string `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`
	ChatID   string `json:"chat_id,omitempty" yaml:"chat_id,omitempty"`

	// Sources records where selected values came from (file, env, flag).
	Sources map[string]string `json:"-" yaml:"-"`
}

// Value sources recorded in Configuration.Sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Host is the interface to bind (default 0.0.0.0)
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	// Port is the TCP port to bind (default 8080)
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
	// ClientIPHeader names the proxy header carrying the original client
	// address (default CF-Connecting-IP). An explicit "" disables it.
	ClientIPHeader *string `json:"client_ip_header,omitempty" yaml:"client_ip_header,omitempty"`
	// ReadTimeout is the HTTP read timeout in seconds
	ReadTimeout int `json:"read_timeout,omitempty" yaml:"read_timeout,omitempty"`
	// WriteTimeout is the HTTP write timeout in seconds
	WriteTimeout int `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"`
	// ShutdownTimeout bounds graceful shutdown in seconds
	ShutdownTimeout int `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`
	// MetricsListen is the address of the metrics listener; empty disables it
	MetricsListen string `json:"metrics_listen,omitempty" yaml:"metrics_listen,omitempty"`
}

// Address returns host:port for the main listener.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ClientIPHeaderName returns the forwarding header to trust, or "" when
// only the transport peer address should be used.
func (s ServerConfig) ClientIPHeaderName() string {
	if s.ClientIPHeader == nil {
		return DefaultClientIPHeader
	}
	return *s.ClientIPHeader
}

// LoggingConfig configures the log sink.
type LoggingConfig struct {
	// File is the log file path. Empty logs to stderr only.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	// Level is the minimum level (debug, info, warn, error)
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is text or json
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	// MaxBackups is the number of rotated files to keep
	MaxBackups int `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	// Stderr mirrors log output to stderr when File is set
	Stderr *bool `json:"stderr,omitempty" yaml:"stderr,omitempty"`
}

// MirrorStderr reports whether log output should also go to stderr.
func (l LoggingConfig) MirrorStderr() bool {
	return l.Stderr == nil || *l.Stderr
}

// NotifierConfig holds the Telegram bot credentials and delivery settings.
type NotifierConfig struct {
	BotToken string `json:"bot_token,omitempty" yaml:"bot_token,omitempty"`
	ChatID   string `json:"chat_id,omitempty" yaml:"chat_id,omitempty"`
	// APIURL is the Bot API base URL (default https://api.telegram.org)
	APIURL string `json:"api_url,omitempty" yaml:"api_url,omitempty"`
	// Timeout bounds a single send in seconds
	Timeout int `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Enabled reports whether both credentials are present.
func (n NotifierConfig) Enabled() bool {
	return n.BotToken != "" && n.ChatID != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (n NotifierConfig) TimeoutDuration() time.Duration {
	return time.Duration(n.Timeout) * time.Second
}

// Status codes a route may answer with. Informational (1xx) codes are
// excluded: net/http sends them as interim headers followed by an implicit 200.
const (
	MinResponseCode = 200
	MaxResponseCode = 599
)

// RouteConfig maps an exact request path to a canned response.
type RouteConfig struct {
	Path         string `json:"path" yaml:"path"`
	Response     string `json:"response" yaml:"response"`
	ResponseCode int    `json:"response_code" yaml:"response_code"`
	Comment      string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// DefaultConfiguration returns a Configuration with defaults and no routes.
func DefaultConfiguration() *Configuration {
	cfg := &Configuration{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults and folds the
// top-level credentials into Notifier.
func (c *Configuration) ApplyDefaults() {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ClientIPHeader == nil {
		header := DefaultClientIPHeader
		c.Server.ClientIPHeader = &header
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}

	if c.Notifier.BotToken == "" {
		c.Notifier.BotToken = c.BotToken
	}
	if c.Notifier.ChatID == "" {
		c.Notifier.ChatID = c.ChatID
	}
	if _, ok := c.Sources["bot_token"]; !ok && c.Notifier.BotToken != "" {
		c.Sources["bot_token"] = SourceFile
	}
	if _, ok := c.Sources["chat_id"]; !ok && c.Notifier.ChatID != "" {
		c.Sources["chat_id"] = SourceFile
	}
	if c.Notifier.APIURL == "" {
		c.Notifier.APIURL = DefaultTelegramAPIURL
	}
	if c.Notifier.Timeout == 0 {
		c.Notifier.Timeout = DefaultNotifyTimeout
	}
}
