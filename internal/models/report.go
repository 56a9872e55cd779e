package models

import (
	"fmt"
	"time"
)

// Report is the outcome of one clipping run.
type Report struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	WindowStart time.Time         `json:"windowStart"`
	WindowEnd   time.Time         `json:"windowEnd"`
	RunID       string            `json:"runId"`
	Categories  []CategoryResults `json:"categories"`
	Stats       RunStats          `json:"stats"`
}

// CategoryResults holds the accepted articles of one category, oldest first.
type CategoryResults struct {
	Name     string          `json:"name"`
	Articles []ResultArticle `json:"articles"`
}

// RunStats counts what happened to each fetched item.
type RunStats struct {
	KeywordsQueried int `json:"keywordsQueried"`
	KeywordsFailed  int `json:"keywordsFailed"`
	Fetched         int `json:"fetched"`
	Duplicates      int `json:"duplicates"`
	Rejected        int `json:"rejected"`
	ItemErrors      int `json:"itemErrors"`
	Accepted        int `json:"accepted"`
}

// TotalArticles returns the number of articles across all categories.
func (r *Report) TotalArticles() int {
	total := 0
	for _, c := range r.Categories {
		total += len(c.Articles)
	}

	return total
}

// String returns a one-line summary of the run statistics.
func (s RunStats) String() string {
	return fmt.Sprintf(
		"Keywords: %d queried, %d failed | Items: %d fetched, %d duplicate, %d rejected, %d invalid, %d accepted",
		s.KeywordsQueried,
		s.KeywordsFailed,
		s.Fetched,
		s.Duplicates,
		s.Rejected,
		s.ItemErrors,
		s.Accepted,
	)
}
