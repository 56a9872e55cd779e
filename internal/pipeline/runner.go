// Package pipeline runs one clipping pass: search every keyword, drop
// near-duplicates, and collect the accepted articles per category.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"newsclip/internal/config"
	"newsclip/internal/dedupe"
	"newsclip/internal/logger"
	"newsclip/internal/models"
)

// Searcher fetches the raw articles for a keyword.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]models.RawArticle, error)
}

// Runner drives the fetch and filter loop.
type Runner struct {
	cfg      *config.Config
	searcher Searcher
	log      *logger.Logger
	tracer   trace.Tracer
	newID    func() string
}

// NewRunner creates a runner.
func NewRunner(cfg *config.Config, searcher Searcher, log *logger.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		searcher: searcher,
		log:      log,
		tracer:   otel.Tracer("newsclip/pipeline"),
		newID:    uuid.NewString,
	}
}

// Run performs one pass for a run started at now. Search failures and
// malformed items are logged and skipped; only context cancellation aborts.
func (r *Runner) Run(ctx context.Context, now time.Time) (*models.Report, error) {
	runID := r.newID()
	start, end := r.cfg.Window.Bounds(now)

	ctx, span := r.tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.categories", len(r.cfg.Categories)),
	))
	defer span.End()

	log := r.log.With("run", runID)
	log.Info(fmt.Sprintf("🕐 Window: %s ~ %s", start.Format(time.DateTime), end.In(start.Location()).Format(time.DateTime)))

	report := &models.Report{
		RunID:       runID,
		GeneratedAt: now,
		WindowStart: start,
		WindowEnd:   end,
	}

	window := dedupe.Window{Start: start, End: end}

	for _, category := range r.cfg.Categories {
		results, err := r.runCategory(ctx, log, category, window, &report.Stats)
		if err != nil {
			return nil, err
		}

		report.Categories = append(report.Categories, models.CategoryResults{
			Name:     category.Name,
			Articles: results,
		})
	}

	span.SetAttributes(attribute.Int("run.accepted", report.Stats.Accepted))

	return report, nil
}

func (r *Runner) runCategory(ctx context.Context, log *logger.Logger, category config.CategoryConfig, window dedupe.Window, stats *models.RunStats) ([]models.ResultArticle, error) {
	log.Info(fmt.Sprintf("📂 Processing category: %s", category.Name))

	d := dedupe.New(category.Name, dedupe.NewSeenSet(), window,
		dedupe.WithThreshold(r.cfg.Dedupe.Threshold),
		dedupe.WithDescriptionLimit(r.cfg.Dedupe.DescriptionLimit),
		dedupe.WithLocation(r.cfg.Window.Location()),
	)

	for _, keyword := range category.Keywords {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stats.KeywordsQueried++

		log.Info(fmt.Sprintf("  🔍 Searching for keyword: %s", keyword))

		raws, err := r.searcher.Search(ctx, keyword)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			stats.KeywordsFailed++

			log.Error(fmt.Sprintf("❌ Request error: %v", err), "category", category.Name, "keyword", keyword)
			log.RecordError("Request error", fmt.Errorf("%s: %w", keyword, err))

			continue
		}

		stats.Fetched += len(raws)

		accepted, err := d.Process(keyword, raws)
		for _, itemErr := range splitJoined(err) {
			log.Warn(fmt.Sprintf("⚠️  Skipping article: %v", itemErr), "category", category.Name)
		}

		for _, a := range accepted {
			log.Debug(fmt.Sprintf("    ✅ Article added: %s", a.Title))
		}

		log.Info(fmt.Sprintf("  ✅ %s: %d fetched, %d added", keyword, len(raws), len(accepted)))
	}

	ds := d.Stats()
	stats.Duplicates += ds.Duplicates
	stats.Rejected += ds.Rejected
	stats.ItemErrors += ds.Invalid
	stats.Accepted += ds.Accepted

	return d.Results(), nil
}

// splitJoined flattens an errors.Join result.
func splitJoined(err error) []error {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}

	return []error{err}
}
