package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/getmockd/canaryd/pkg/engine"
	"github.com/getmockd/canaryd/pkg/metrics"
	"github.com/getmockd/canaryd/pkg/routes"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var serveFlags ServerFlags

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the listener (default command)",
	Long: `Start the listener.

The route table is read once at startup. Every request whose path exactly
matches a route gets that route's body and status code; the match is logged
at warn level and sent to the configured Telegram chat. Any other path gets
404 "404 Not Found".

Telegram credentials come from the config file or the BOT_TOKEN and CHAT_ID
environment variables (environment wins). Without credentials the listener
still runs and only logs matches.`,
	Example: `  # Start with config.yaml in the current directory
  canaryd

  # Start with a specific config on another port
  canaryd serve --config /etc/canaryd/config.yaml --port 9090

  # Credentials from the environment, metrics on localhost
  BOT_TOKEN=123:abc CHAT_ID=-100200 canaryd --metrics-listen 127.0.0.1:8481`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveFlags.register(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, &serveFlags, cmd.Flags(), cmd.ErrOrStderr(), nil)
}

// serve runs the listener until ctx is done. ready, when non-nil, is called
// once the server is accepting connections.
func serve(ctx context.Context, f *ServerFlags, fs *pflag.FlagSet, stderr io.Writer, ready func(*engine.Server)) error {
	cfg, err := LoadConfiguration(f, fs)
	if err != nil {
		return err
	}

	log, closer := newLogger(cfg.Logging, stderr)
	defer func() { _ = closer.Close() }()

	table := routes.FromConfig(cfg.Routes)
	all := table.Routes()
	for _, i := range table.Shadowed() {
		log.Warn("route shadowed by an earlier route with the same path", "index", i, "path", all[i].Path)
	}

	notifier, err := newNotifier(cfg.Notifier, log)
	if err != nil {
		return fmt.Errorf("failed to create notifier: %w", err)
	}
	if cfg.Notifier.Enabled() {
		log.Info("notifier enabled",
			"bot_token_source", cfg.Sources["bot_token"],
			"chat_id_source", cfg.Sources["chat_id"],
		)
	}

	srv := engine.NewServer(cfg, table,
		engine.WithLogger(log),
		engine.WithNotifier(notifier),
		engine.WithMetrics(metrics.New()),
	)
	if err := srv.Start(); err != nil {
		return err
	}
	if ready != nil {
		ready(srv)
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
