package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"newsclip/internal/config"
	"newsclip/internal/formatter"
	"newsclip/internal/logger"
	"newsclip/internal/models"
	"newsclip/internal/pipeline"
	"newsclip/internal/search"
	"newsclip/pkg/metadata"
)

type item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
}

var fixtures = map[string][]item{
	"금리": {
		{"<b>금리</b> 인상 우려에 채권 약세", "https://n.news.naver.com/article/001/1", "국고채 3년물이 일제히 올랐다", "Thu, 02 May 2024 01:00:00 +0900"},
		{"한은 기준<b>금리</b> 동결", "https://n.news.naver.com/article/001/2", "금통위는 만장일치로 결정했다", "Thu, 02 May 2024 08:00:00 +0900"},
		{"<b>금리</b> 인상 우려에 채권 약세", "https://n.news.naver.com/article/002/1", "국고채 3년물이 일제히 올랐다.", "Thu, 02 May 2024 01:05:00 +0900"},
		{"<b>금리</b> 전망 보고서", "https://n.news.naver.com/article/001/3", "증권사 채권 전략 리포트", "Tue, 30 Apr 2024 10:00:00 +0900"},
	},
	"코스피": {
		{"<b>코스피</b> 2700선 회복", "https://n.news.naver.com/article/001/4", "기관 매수세 유입", "Thu, 02 May 2024 03:00:00 +0900"},
		{"증시 마감 시황", "https://n.news.naver.com/article/001/5", "<b>코스피</b>가 상승 마감했다", "Thu, 02 May 2024 04:00:00 +0900"},
	},
}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Naver-Client-Id") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		items, ok := fixtures[r.URL.Query().Get("query")]
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(map[string]any{
			"lastBuildDate": "Thu, 02 May 2024 09:00:00 +0900",
			"total":         len(items),
			"start":         1,
			"display":       len(items),
			"items":         items,
		}); err != nil {
			t.Errorf("encode failed: %v", err)
		}
	}))
}

func TestClippingFlow(t *testing.T) {
	server := newFakeAPI(t)
	defer server.Close()

	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	cfg.Search.Endpoint = server.URL + "/v1/search/news.json"
	cfg.Search.RequestsPerSecond = 1000
	cfg.Retry.MaxAttempts = 2
	cfg.Categories = []config.CategoryConfig{
		{Name: "주요증시/거시경제", Keywords: []string{"금리", "코스피"}},
		{Name: "반도체", Keywords: []string{"하이닉스"}},
	}
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Markdown = true

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	log := logger.NewLoggerWithWriter(io.Discard, "debug")
	creds := config.Credentials{ClientID: "id", ClientSecret: "secret"}
	noSleep := func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	client := search.NewClient(cfg.Search, creds, cfg.Retry, log, search.WithSleep(noSleep))
	runner := pipeline.NewRunner(cfg, client, log)

	now := time.Date(2024, 5, 2, 9, 0, 0, 0, cfg.Window.Location())

	report, err := runner.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := models.RunStats{
		KeywordsQueried: 3,
		KeywordsFailed:  1,
		Fetched:         6,
		Duplicates:      1,
		Rejected:        2,
		Accepted:        3,
	}
	if report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", report.Stats, want)
	}

	if got := client.Attempts().Stats(); got.FailedKeywords != 1 {
		t.Errorf("Expected 1 failed keyword in attempt log, got %s", got)
	}

	html, err := formatter.RenderHTML(report, cfg.Page, "test")
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	digest, err := formatter.RenderMarkdown(report, cfg.Page.Title, "test")
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}

	written, err := formatter.NewWriter(cfg.Output).Write(report, html, digest)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !strings.HasSuffix(written.HTML, "news_results_20240502_090000.html") {
		t.Errorf("Unexpected report path %s", written.HTML)
	}

	data, err := os.ReadFile(written.HTML)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	page := string(data)

	meta, err := metadata.Verify(page)
	if err != nil {
		t.Fatalf("Written report does not verify: %v", err)
	}

	if meta.RunID != report.RunID || meta.Articles != 3 {
		t.Errorf("Unexpected metadata %+v", meta)
	}

	// oldest first
	order := []string{"금리 인상 우려에 채권 약세", "코스피 2700선 회복", "한은 기준금리 동결"}
	last := -1

	for _, title := range order {
		idx := strings.Index(page, title)
		if idx <= last {
			t.Errorf("Expected %q after position %d, got %d", title, last, idx)
		}

		last = idx
	}

	for _, absent := range []string{"금리 전망 보고서", "증시 마감 시황", "article/002/1"} {
		if strings.Contains(page, absent) {
			t.Errorf("Expected %q to be filtered out", absent)
		}
	}

	if !strings.Contains(page, "<h1 class='category'>반도체</h1>") {
		t.Error("Expected the failed category to keep its heading")
	}

	if _, err := os.Stat(written.Markdown); err != nil {
		t.Errorf("Expected markdown digest: %v", err)
	}
}
