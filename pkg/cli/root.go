package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "canaryd",
	Short: "canaryd answers configured paths with canned responses and reports every hit",
	Long: `canaryd listens for HTTP requests, answers paths listed in its route table
with a fixed body and status code, logs each match and forwards it to a
Telegram chat. Unknown paths get "404 Not Found" and are not reported.

Configuration can be provided via flags, environment variables, or a
configuration file (config.yaml by default). Running canaryd without a
subcommand is the same as "canaryd serve".`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute runs the command line in os.Args and exits non-zero on error.
// This is called by main.main().
func Execute() {
	if err := ExecuteArgs(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// ExecuteArgs runs the command line in args with the given outputs.
func ExecuteArgs(args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(resolveArgs(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

// resolveArgs makes serve the default command: no arguments, or a leading
// flag other than help, runs serve.
func resolveArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"serve"}
	}
	first := args[0]
	if first == "-h" || first == "--help" || first == "help" {
		return args
	}
	if strings.HasPrefix(first, "-") {
		return append([]string{"serve"}, args...)
	}
	return args
}
