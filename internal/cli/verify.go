package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"newsclip/pkg/metadata"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <report>",
		Short: "Check that a report has not been modified since it was written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading report: %w", err)
			}

			meta, err := metadata.Verify(string(content))
			if err != nil {
				return fmt.Errorf("❌ %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ %s is intact\n", args[0])
			fmt.Fprintf(out, "Run ID: %s\n", meta.RunID)
			fmt.Fprintf(out, "Version: %s\n", meta.Version)
			fmt.Fprintf(out, "Generated: %s\n", meta.Generated.Format(time.RFC3339))
			fmt.Fprintf(out, "Articles: %d\n", meta.Articles)

			return nil
		},
	}
}
