package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"newsclip/internal/config"
	"newsclip/internal/formatter"
	"newsclip/internal/logger"
	"newsclip/internal/observability"
	"newsclip/internal/pipeline"
	"newsclip/internal/search"
)

type runFlags struct {
	output   string
	envFile  string
	markdown bool
	dryRun   bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search all keywords and write the HTML report",
		Long: `Search every configured keyword, drop near-duplicate articles and write
news_results_YYYYMMDD_HHMMSS.html into the output directory.

Credentials are read from NAVER_CLIENT_ID and NAVER_CLIENT_SECRET, or from the --env-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			if root.logLevel != "" {
				cfg.Logging.Level = root.logLevel
			}

			if flags.output != "" {
				cfg.Output.Dir = flags.output
			}

			if cmd.Flags().Changed("markdown") {
				cfg.Output.Markdown = flags.markdown
			}

			return runClip(cmd.Context(), cfg, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory for reports")
	cmd.Flags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file holding the API credentials")
	cmd.Flags().BoolVar(&flags.markdown, "markdown", false, "also write a markdown digest")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "search and filter without writing any report")

	return cmd
}

func runClip(ctx context.Context, cfg *config.Config, flags *runFlags, out io.Writer) error {
	creds, err := config.LoadCredentials(flags.envFile)
	if err != nil {
		return err
	}

	log, err := logger.NewFileLogger(cfg.Logging.Level, cfg.Output.RunLogPath())
	if err != nil {
		return err
	}
	defer log.Close()

	log.Record("Script started")

	shutdown, err := observability.InitTracer(ctx, cfg.Tracing, version, log)
	if err != nil {
		log.Warn(fmt.Sprintf("⚠️  Tracing disabled: %v", err))
	}

	defer func() {
		if shutdownErr := shutdown(context.Background()); shutdownErr != nil {
			log.Warn(fmt.Sprintf("⚠️  Tracer shutdown failed: %v", shutdownErr))
		}
	}()

	log.Info("🚀 Starting news clipping")
	log.Info(fmt.Sprintf("📋 %d categories, %d keywords", len(cfg.Categories), cfg.KeywordCount()))

	startTime := time.Now()

	client := search.NewClient(cfg.Search, creds, cfg.Retry, log)
	runner := pipeline.NewRunner(cfg, client, log)

	report, err := runner.Run(ctx, time.Now().In(cfg.Window.Location()))
	if err != nil {
		log.RecordError("Run aborted", err)
		return fmt.Errorf("run aborted: %w", err)
	}

	client.Attempts().LogSummary(log)

	fmt.Fprintln(out, "\n------------------------------------------------")
	fmt.Fprintf(out, "📊 Summary Report\n")
	fmt.Fprintln(out, "------------------------------------------------")
	fmt.Fprintf(out, "Run ID: %s\n", report.RunID)
	fmt.Fprintf(out, "Window: %s ~ %s\n", report.WindowStart.Format(time.DateTime), report.WindowEnd.Format(time.DateTime))

	for _, c := range report.Categories {
		fmt.Fprintf(out, "  %s: %d articles\n", c.Name, len(c.Articles))
	}

	fmt.Fprintf(out, "%s\n", report.Stats)
	fmt.Fprintf(out, "Total Duration: %v\n", time.Since(startTime).Round(time.Millisecond))

	if flags.dryRun {
		fmt.Fprintln(out, "Dry run: no report written")
		fmt.Fprintln(out, "------------------------------------------------")
		log.Record("Script completed")

		return nil
	}

	html, err := formatter.RenderHTML(report, cfg.Page, version)
	if err != nil {
		return err
	}

	var digest string
	if cfg.Output.Markdown {
		digest, err = formatter.RenderMarkdown(report, cfg.Page.Title, version)
		if err != nil {
			return err
		}
	}

	written, err := formatter.NewWriter(cfg.Output).Write(report, html, digest)
	if err != nil {
		log.RecordError("Write error", err)
		return err
	}

	fmt.Fprintf(out, "Report: %s\n", written.HTML)

	if written.Markdown != "" {
		fmt.Fprintf(out, "Digest: %s\n", written.Markdown)
	}

	fmt.Fprintln(out, "------------------------------------------------")

	log.Info("✨ Clipping complete!")
	log.Record("Script completed")

	return nil
}
