// Package cli implements the newsclip command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"newsclip/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

// SetVersionInfo sets the build information printed by the version command.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

type rootFlags struct {
	config   string
	logLevel string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Keyword news clipper",
		Long:          "newsclip searches the news API for configured keywords, drops near-duplicate articles and renders the rest as an HTML report.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.config, "config", "", "path to config file (default "+config.DefaultConfigPath()+")")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newInitConfigCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit: %s, built: %s)\n", config.AppName, version, commit, date)
		},
	}
}

// loadConfig reads the explicit config file, falling back to the per-user
// file and then to the embedded defaults.
func (f *rootFlags) loadConfig() (*config.Config, error) {
	path := f.config
	if path == "" {
		path = config.DefaultConfigPath()

		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			cfg, err := config.Default()
			if err != nil {
				return nil, err
			}

			return cfg, cfg.Validate()
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	return cfg, nil
}
