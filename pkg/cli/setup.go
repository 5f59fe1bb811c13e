package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/getmockd/canaryd/pkg/config"
	"github.com/getmockd/canaryd/pkg/logging"
	"github.com/getmockd/canaryd/pkg/notify"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is read when neither --config nor CANARYD_CONFIG is set.
const DefaultConfigFile = "config.yaml"

// ServerFlags holds the serve command's flags.
type ServerFlags struct {
	ConfigFile    string
	Host          string
	Port          int
	LogFile       string
	LogLevel      string
	LogFormat     string
	MetricsListen string
}

// register binds the flags to fs.
func (f *ServerFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "Path to configuration file (default: $CANARYD_CONFIG or config.yaml)")
	fs.StringVar(&f.Host, "host", config.DefaultHost, "Interface to listen on")
	fs.IntVarP(&f.Port, "port", "p", config.DefaultPort, "Port to listen on")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file, rotated at midnight (default from config)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFormat, "log-format", "", "Log format (text, json)")
	fs.StringVar(&f.MetricsListen, "metrics-listen", "", "Address for the Prometheus /metrics listener (empty disables)")
}

// resolveConfigPath picks the config file: flag, then environment, then
// the default name.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := config.ConfigPathFromEnv(); v != "" {
		return v
	}
	return DefaultConfigFile
}

// LoadConfiguration reads the document, applies environment overrides and
// the flags set explicitly in fs, and validates the result.
func LoadConfiguration(f *ServerFlags, fs *pflag.FlagSet) (*config.Configuration, error) {
	path := resolveConfigPath(f.ConfigFile)
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	applyFlags(cfg, f, fs)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cfg *config.Configuration, f *ServerFlags, fs *pflag.FlagSet) {
	set := func(name string) bool {
		changed := fs != nil && fs.Changed(name)
		if changed {
			cfg.Sources[name] = config.SourceFlag
		}
		return changed
	}

	if set("host") {
		cfg.Server.Host = f.Host
	}
	if set("port") {
		cfg.Server.Port = f.Port
	}
	if set("log-file") {
		cfg.Logging.File = f.LogFile
	}
	if set("log-level") {
		cfg.Logging.Level = f.LogLevel
	}
	if set("log-format") {
		cfg.Logging.Format = f.LogFormat
	}
	if set("metrics-listen") {
		cfg.Server.MetricsListen = f.MetricsListen
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the process logger. With a log file configured, records
// go to a midnight-rotated file and, unless disabled, to stderr as well.
// The returned closer stops rotation and closes the file.
func newLogger(cfg config.LoggingConfig, stderr io.Writer) (*slog.Logger, io.Closer) {
	base := logging.Config{
		Level:  logging.ParseLevel(cfg.Level),
		Format: logging.ParseFormat(cfg.Format),
		Output: stderr,
	}

	if cfg.File == "" {
		return logging.New(base), nopCloser{}
	}

	file := logging.NewDailyFile(cfg.File, cfg.MaxBackups)
	file.Start()

	fileCfg := base
	fileCfg.Output = file
	handlers := []slog.Handler{logging.NewHandler(fileCfg)}
	if cfg.MirrorStderr() {
		handlers = append(handlers, logging.NewHandler(base))
	}
	return slog.New(logging.NewMultiHandler(handlers...)), file
}

// newNotifier returns the Telegram notifier, or a no-op one when no
// credentials are configured.
func newNotifier(cfg config.NotifierConfig, log *slog.Logger) (notify.Notifier, error) {
	if !cfg.Enabled() {
		log.Warn("notifier disabled: bot_token and chat_id are not configured")
		return notify.Nop{}, nil
	}
	return notify.NewTelegram(cfg.APIURL, cfg.BotToken, cfg.ChatID, notify.WithTimeout(cfg.TimeoutDuration()))
}
