package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"homefix/internal/config"
)

// Exit codes
const (
	ExitSuccess       = 0
	ExitGenericError  = 1
	ExitConfigInvalid = 2
	ExitBindFailure   = 4
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	ConfigPath string
	JSON       bool
	Quiet      bool
	LogLevel   string
	LogFormat  string
	Provider   string
	Model      string
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:           "homefix",
	Short:         "Safety-gated home repair diagnosis MCP server",
	Long:          "homefix diagnoses home repair problems from photos, refuses DIY for dangerous work, and serves the tools over MCP.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "config file path (default: $XDG_CONFIG_HOME/homefix/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "emit JSON instead of styled text")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Quiet, "quiet", false, "reduce output")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogFormat, "log-format", "", "log format: console|json")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Provider, "provider", "", "vision model provider: mistral|gemini")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Model, "model", "", "vision model name")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	st := newStyles(os.Stderr, globalFlags.JSON)
	fmt.Fprintln(os.Stderr, st.errPrefix(), err.Error())
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	if errors.Is(err, config.ErrInvalid) {
		return ExitConfigInvalid
	}
	return ExitGenericError
}

// exitError carries a specific exit code through cobra's RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}
