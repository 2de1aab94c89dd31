// Package cli defines the lawglot command tree: serve runs the API server,
// collect builds the terminology snapshot, translate resolves one text from
// the command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lawglot/lawglot/internal/config"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// defaultConfigFile is picked up from the working directory when --config is
// not given.
const defaultConfigFile = "lawglot.yaml"

type cliContextKey struct{}

// CLIContext carries the initialized configuration and logger through the
// command tree.
type CLIContext struct {
	Config *config.Config
	Logger logging.Logger
}

// NewRootCommand creates the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "lawglot",
		Short:   "lawglot — everyday Korean to legal terminology translation",
		Long:    "lawglot extracts keywords from plain Korean text and resolves them\nthrough the national law information service into legal terms and the\nstatute articles that define them.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initContext(cmd, configPath)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: ./lawglot.yaml, else environment only)")

	cmd.AddCommand(
		NewServeCmd(),
		NewCollectCmd(),
		NewTranslateCmd(),
	)
	return cmd
}

// initContext loads configuration and the logger, then stores both in the
// command context for subcommands.
func initContext(cmd *cobra.Command, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	ctx := context.WithValue(cmd.Context(), cliContextKey{}, &CLIContext{
		Config: cfg,
		Logger: logger,
	})
	cmd.SetContext(ctx)
	return nil
}

// loadConfig resolves configuration with priority: --config flag, then a
// lawglot.yaml in the working directory, then environment variables alone.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return config.LoadFromEnv()
}

// getCLIContext extracts the CLIContext stored by the root command.
func getCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	cliCtx, ok := cmd.Context().Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("command context not initialized")
	}
	return cliCtx, nil
}

// Execute runs the command tree and reports failures on stderr.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return err
	}
	return nil
}
