package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsclip/internal/config"
)

func newInitConfigCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration file",
		Long:  "Write the built-in configuration to path, or to " + config.DefaultConfigPath() + " when no path is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}

			if err := config.WriteDefault(path, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "📝 Wrote default config to %s\n", path)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}
