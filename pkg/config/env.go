package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvBotToken      = "BOT_TOKEN"
	EnvChatID        = "CHAT_ID"
	EnvPrefixedToken = "CANARYD_BOT_TOKEN"
	EnvPrefixedChat  = "CANARYD_CHAT_ID"
	EnvConfig        = "CANARYD_CONFIG"
	EnvHost          = "CANARYD_HOST"
	EnvPort          = "CANARYD_PORT"
	EnvLogFile       = "CANARYD_LOG_FILE"
	EnvLogLevel      = "CANARYD_LOG_LEVEL"
	EnvMetricsListen = "CANARYD_METRICS_LISTEN"
)

// ApplyEnv overrides cfg with values present in the environment.
// Unset or empty variables leave cfg untouched. A value that cannot be
// parsed is reported as a *ValidationError naming the variable; the other
// variables are still applied.
func ApplyEnv(cfg *Configuration) error {
	var err error

	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v := firstEnv(EnvPrefixedToken, EnvBotToken); v != "" {
		cfg.Notifier.BotToken = v
		cfg.Sources["bot_token"] = SourceEnv
	}

	if v := firstEnv(EnvPrefixedChat, EnvChatID); v != "" {
		cfg.Notifier.ChatID = v
		cfg.Sources["chat_id"] = SourceEnv
	}

	if v := os.Getenv(EnvHost); v != "" {
		cfg.Server.Host = v
		cfg.Sources["host"] = SourceEnv
	}

	if v := os.Getenv(EnvPort); v != "" {
		if port, perr := strconv.Atoi(v); perr == nil {
			cfg.Server.Port = port
			cfg.Sources["port"] = SourceEnv
		} else {
			err = &ValidationError{Field: EnvPort, Message: fmt.Sprintf("must be an integer port, got %q", v)}
		}
	}

	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Logging.File = v
		cfg.Sources["log_file"] = SourceEnv
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
		cfg.Sources["log_level"] = SourceEnv
	}

	if v := os.Getenv(EnvMetricsListen); v != "" {
		cfg.Server.MetricsListen = v
		cfg.Sources["metrics_listen"] = SourceEnv
	}

	return err
}

// ConfigPathFromEnv returns the config file path from the environment.
// Returns empty string if not set.
func ConfigPathFromEnv() string {
	return os.Getenv(EnvConfig)
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
