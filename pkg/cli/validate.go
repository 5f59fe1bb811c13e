package cli

import (
	"fmt"

	"github.com/getmockd/canaryd/pkg/config"
	"github.com/getmockd/canaryd/pkg/routes"
	"github.com/spf13/cobra"
)

var validateConfigFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file without starting the listener",
	Long: `Validate a config file without starting the listener.

Checks YAML/JSON syntax, required route fields, status code ranges and
notifier credentials (after environment overrides), and reports routes that
are shadowed by an earlier route with the same path.`,
	Example: `  canaryd validate
  canaryd validate --config ./config.yaml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateConfigFile, "config", "c", "", "Path to configuration file (default: $CANARYD_CONFIG or config.yaml)")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	path := resolveConfigPath(validateConfigFile)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	table := routes.FromConfig(cfg.Routes)
	fmt.Fprintf(out, "%s: %d routes OK\n", path, table.Len())

	all := table.Routes()
	for _, i := range table.Shadowed() {
		fmt.Fprintf(out, "  warning: routes[%d] %s is shadowed by an earlier route\n", i, all[i].Path)
	}

	if cfg.Notifier.Enabled() {
		fmt.Fprintf(out, "  notifier: telegram (chat %s)\n", cfg.Notifier.ChatID)
	} else {
		fmt.Fprintln(out, "  notifier: disabled (no bot_token/chat_id)")
	}
	return nil
}
