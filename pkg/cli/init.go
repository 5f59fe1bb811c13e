package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/getmockd/canaryd/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	initOutput   string
	initForce    bool
	initPath     string
	initResponse string
	initCode     int
	initComment  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a starter config file with one route.

Without --path the route is asked for interactively. Telegram credentials are
not written; set BOT_TOKEN and CHAT_ID in the environment instead.`,
	Example: `  # Interactive
  canaryd init

  # Non-interactive
  canaryd init --path /wp-login.php --response Forbidden --code 403 --comment "wordpress probe"`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initOutput, "output", "o", DefaultConfigFile, "File to write")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")
	initCmd.Flags().StringVar(&initPath, "path", "", "Route path to match")
	initCmd.Flags().StringVar(&initResponse, "response", "", "Route response body")
	initCmd.Flags().IntVar(&initCode, "code", 200, "Route status code")
	initCmd.Flags().StringVar(&initComment, "comment", "", "Route comment included in notifications")
}

func runInit(cmd *cobra.Command, _ []string) error {
	if !initForce {
		if _, err := os.Stat(initOutput); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", initOutput)
		}
	}

	route := config.RouteConfig{
		Path:         initPath,
		Response:     initResponse,
		ResponseCode: initCode,
		Comment:      initComment,
	}
	if !cmd.Flags().Changed("path") {
		if err := promptRoute(&route); err != nil {
			return err
		}
	}

	data, err := starterConfig(route)
	if err != nil {
		return err
	}
	if err := os.WriteFile(initOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", initOutput, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", initOutput)
	return nil
}

// starterConfig renders a validated document holding route.
func starterConfig(route config.RouteConfig) ([]byte, error) {
	header := config.DefaultClientIPHeader
	cfg := &config.Configuration{
		Server: config.ServerConfig{
			Host:           config.DefaultHost,
			Port:           config.DefaultPort,
			ClientIPHeader: &header,
		},
		Logging: config.LoggingConfig{
			File:  config.DefaultLogFile,
			Level: "info",
		},
		Routes: []config.RouteConfig{route},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return yaml.Marshal(cfg)
}

func promptRoute(route *config.RouteConfig) error {
	code := strconv.Itoa(route.ResponseCode)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Which path should trip the wire?").
				Placeholder("/wp-login.php").
				Value(&route.Path).
				Validate(validatePathInput),
			huh.NewInput().
				Title("What status code should it return?").
				Value(&code).
				Validate(validateCodeInput),
			huh.NewText().
				Title("Response body").
				Placeholder("Forbidden").
				Value(&route.Response),
			huh.NewInput().
				Title("Comment (sent with every alert)").
				Value(&route.Comment),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("invalid status code %q: %w", code, err)
	}
	route.ResponseCode = n
	return nil
}

func validatePathInput(s string) error {
	if !strings.HasPrefix(s, "/") {
		return errors.New("path must start with /")
	}
	return nil
}

func validateCodeInput(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < config.MinResponseCode || n > config.MaxResponseCode {
		return fmt.Errorf("status code must be between %d and %d", config.MinResponseCode, config.MaxResponseCode)
	}
	return nil
}
