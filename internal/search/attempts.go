package search

import (
	"fmt"
	"sort"
	"time"

	"newsclip/internal/logger"
)

// AttemptResult records the result of one request.
type AttemptResult struct {
	Timestamp  time.Time
	Keyword    string
	Error      string
	Attempt    int
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// AttemptLog keeps every request attempt grouped by keyword.
type AttemptLog struct {
	byKeyword map[string][]AttemptResult
	order     []string
}

// NewAttemptLog creates an empty log.
func NewAttemptLog() *AttemptLog {
	return &AttemptLog{
		byKeyword: make(map[string][]AttemptResult),
	}
}

// Record records the result of a fetch attempt.
func (al *AttemptLog) Record(keyword string, attempt int, success bool, err error, statusCode int, duration time.Duration) {
	if _, ok := al.byKeyword[keyword]; !ok {
		al.order = append(al.order, keyword)
	}

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	al.byKeyword[keyword] = append(al.byKeyword[keyword], AttemptResult{
		Keyword:    keyword,
		Attempt:    attempt,
		Success:    success,
		Error:      errMsg,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: statusCode,
	})
}

// Get returns the attempts made for a keyword.
func (al *AttemptLog) Get(keyword string) []AttemptResult {
	return al.byKeyword[keyword]
}

// Stats returns statistics about fetch attempts.
func (al *AttemptLog) Stats() AttemptStats {
	stats := AttemptStats{
		KeywordAttempts: make(map[string]int),
	}

	for keyword, results := range al.byKeyword {
		stats.TotalKeywords++
		stats.KeywordAttempts[keyword] = len(results)
		stats.TotalAttempts += len(results)

		keywordSuccess := false

		for _, result := range results {
			if result.Success {
				stats.SuccessfulAttempts++
				keywordSuccess = true
			} else {
				stats.FailedAttempts++
			}
		}

		if keywordSuccess {
			stats.SuccessfulKeywords++
		} else {
			stats.FailedKeywords++
		}
	}

	return stats
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	KeywordAttempts    map[string]int
	TotalKeywords      int
	SuccessfulKeywords int
	FailedKeywords     int
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"Keywords: %d total, %d success, %d failed | Attempts: %d total, %d success, %d failed",
		s.TotalKeywords,
		s.SuccessfulKeywords,
		s.FailedKeywords,
		s.TotalAttempts,
		s.SuccessfulAttempts,
		s.FailedAttempts,
	)
}

// RetriedKeywords returns the keywords that needed more than one attempt, sorted.
func (s AttemptStats) RetriedKeywords() []string {
	var out []string

	for keyword, n := range s.KeywordAttempts {
		if n > 1 {
			out = append(out, keyword)
		}
	}

	sort.Strings(out)

	return out
}

// LogSummary logs a summary of fetch attempts using the provided logger.
func (al *AttemptLog) LogSummary(l *logger.Logger) {
	l.Info("📊 Fetch Attempt Summary:")

	for i, keyword := range al.order {
		results := al.byKeyword[keyword]
		last := results[len(results)-1]

		statusEmoji := "❌"
		if last.Success {
			statusEmoji = "✅"
		}

		l.Info(fmt.Sprintf("%d. %s: %s (%d attempts)", i+1, keyword, statusEmoji, len(results)))

		for j, result := range results {
			if result.Success {
				continue
			}

			l.Debug(fmt.Sprintf("     Attempt %d: ❌ Failed: %s (%.2fs)", j+1, result.Error, result.Duration.Seconds()))
		}
	}

	l.Info(fmt.Sprintf("Overall: %s", al.Stats()))
}
