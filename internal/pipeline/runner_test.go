package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"newsclip/internal/config"
	"newsclip/internal/logger"
	"newsclip/internal/models"
)

var errNetwork = errors.New("connection reset")

// fakeSearcher returns canned results per keyword.
type fakeSearcher struct {
	results map[string][]models.RawArticle
	errs    map[string]error
	calls   []string
	onCall  func(keyword string)
}

func (f *fakeSearcher) Search(ctx context.Context, keyword string) ([]models.RawArticle, error) {
	f.calls = append(f.calls, keyword)

	if f.onCall != nil {
		f.onCall(keyword)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err, ok := f.errs[keyword]; ok {
		return nil, err
	}

	return f.results[keyword], nil
}

func testConfig(t *testing.T, categories ...config.CategoryConfig) *config.Config {
	t.Helper()

	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	cfg.Categories = categories

	return cfg
}

func testNow(t *testing.T, cfg *config.Config) time.Time {
	t.Helper()

	return time.Date(2024, 5, 2, 9, 0, 0, 0, cfg.Window.Location())
}

func article(title, desc, pub string) models.RawArticle {
	return models.RawArticle{
		Title:       title,
		Description: desc,
		Link:        "https://n.news.naver.com/" + title,
		PubDate:     pub,
	}
}

func newTestRunner(cfg *config.Config, s Searcher) *Runner {
	r := NewRunner(cfg, s, logger.NewLoggerWithWriter(io.Discard, "debug"))
	r.newID = func() string { return "run-1" }

	return r
}

func TestRunner_Run(t *testing.T) {
	cfg := testConfig(t,
		config.CategoryConfig{Name: "주요증시/거시경제", Keywords: []string{"금리", "코스피", "나스닥"}},
		config.CategoryConfig{Name: "반도체", Keywords: []string{"하이닉스"}},
	)

	searcher := &fakeSearcher{
		results: map[string][]models.RawArticle{
			"금리": {
				article("한은 기준금리 동결 결정", "금통위는 만장일치로 결정했다", "Thu, 02 May 2024 08:00:00 +0900"),
				article("금리 인상 우려에 채권 약세", "국고채 3년물이 일제히 올랐다", "Thu, 02 May 2024 01:00:00 +0900"),
				article("장기 금리 전망 보고서", "증권사 채권 전략", "bad date"),
			},
			"코스피": {
				article("코스피 2700선 회복", "기관 매수세 유입", "Thu, 02 May 2024 03:00:00 +0900"),
				article("코스피 2700선 회복", "기관 매수세 유입.", "Thu, 02 May 2024 03:05:00 +0900"),
				article("증시 마감 시황", "코스피가 상승 마감했다", "Thu, 02 May 2024 04:00:00 +0900"),
			},
			"하이닉스": {
				article("하이닉스 HBM 공급 확대", "엔비디아向 물량 증가", "Wed, 01 May 2024 23:00:00 +0900"),
				article("하이닉스 1분기 실적", "영업이익 흑자 전환", "Wed, 01 May 2024 22:59:59 +0900"),
			},
		},
		errs: map[string]error{
			"나스닥": errNetwork,
		},
	}

	report, err := newTestRunner(cfg, searcher).Run(context.Background(), testNow(t, cfg))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.RunID != "run-1" {
		t.Errorf("Expected run ID run-1, got %q", report.RunID)
	}

	if len(searcher.calls) != 4 {
		t.Errorf("Expected every keyword to be searched, got %v", searcher.calls)
	}

	if len(report.Categories) != 2 || report.Categories[0].Name != "주요증시/거시경제" || report.Categories[1].Name != "반도체" {
		t.Fatalf("Unexpected categories: %+v", report.Categories)
	}

	macro := report.Categories[0].Articles
	if len(macro) != 3 {
		t.Fatalf("Expected 3 macro articles, got %d: %+v", len(macro), macro)
	}

	wantOrder := []string{"2024-05-02 01:00:00", "2024-05-02 03:00:00", "2024-05-02 08:00:00"}
	for i, a := range macro {
		if a.Published != wantOrder[i] {
			t.Errorf("Position %d: expected %s, got %s", i, wantOrder[i], a.Published)
		}
	}

	chips := report.Categories[1].Articles
	if len(chips) != 1 || chips[0].Title != "하이닉스 HBM 공급 확대" {
		t.Errorf("Expected only the article at the window start, got %+v", chips)
	}

	want := models.RunStats{
		KeywordsQueried: 4,
		KeywordsFailed:  1,
		Fetched:         8,
		Duplicates:      1,
		Rejected:        2,
		ItemErrors:      1,
		Accepted:        4,
	}
	if report.Stats != want {
		t.Errorf("Stats = %+v, want %+v", report.Stats, want)
	}

	if report.TotalArticles() != 4 {
		t.Errorf("Expected 4 articles in total, got %d", report.TotalArticles())
	}

	if !report.WindowStart.Equal(time.Date(2024, 5, 1, 23, 0, 0, 0, cfg.Window.Location())) {
		t.Errorf("Unexpected window start %v", report.WindowStart)
	}
}

func TestRunner_SeenSetIsPerCategory(t *testing.T) {
	shared := article("코스닥 특징주 급등", "2차전지 관련주 강세", "Thu, 02 May 2024 02:00:00 +0900")

	cfg := testConfig(t,
		config.CategoryConfig{Name: "A", Keywords: []string{"코스닥"}},
		config.CategoryConfig{Name: "B", Keywords: []string{"특징주"}},
	)

	searcher := &fakeSearcher{
		results: map[string][]models.RawArticle{
			"코스닥": {shared},
			"특징주": {shared},
		},
	}

	report, err := newTestRunner(cfg, searcher).Run(context.Background(), testNow(t, cfg))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, c := range report.Categories {
		if len(c.Articles) != 1 {
			t.Errorf("Category %s: expected the shared article once, got %d", c.Name, len(c.Articles))
		}
	}
}

func TestRunner_ContextCanceled(t *testing.T) {
	cfg := testConfig(t,
		config.CategoryConfig{Name: "A", Keywords: []string{"금리", "물가", "채권"}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	searcher := &fakeSearcher{
		onCall: func(keyword string) {
			if keyword == "물가" {
				cancel()
			}
		},
	}

	_, err := newTestRunner(cfg, searcher).Run(ctx, testNow(t, cfg))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	if len(searcher.calls) != 2 {
		t.Errorf("Expected the run to stop after the canceled search, got %v", searcher.calls)
	}
}

func TestRunner_AllKeywordsFail(t *testing.T) {
	cfg := testConfig(t,
		config.CategoryConfig{Name: "A", Keywords: []string{"금리", "물가"}},
	)

	searcher := &fakeSearcher{
		errs: map[string]error{"금리": errNetwork, "물가": errNetwork},
	}

	report, err := newTestRunner(cfg, searcher).Run(context.Background(), testNow(t, cfg))
	if err != nil {
		t.Fatalf("Expected failures to be tolerated, got %v", err)
	}

	if report.Stats.KeywordsFailed != 2 || report.TotalArticles() != 0 {
		t.Errorf("Unexpected report: %+v", report.Stats)
	}

	if len(report.Categories) != 1 || len(report.Categories[0].Articles) != 0 {
		t.Errorf("Expected an empty category section, got %+v", report.Categories)
	}
}

func TestSplitJoined(t *testing.T) {
	a, b := errors.New("a"), errors.New("b")

	if got := splitJoined(nil); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}

	if got := splitJoined(errors.Join(a, b)); len(got) != 2 {
		t.Errorf("Expected 2 errors, got %v", got)
	}

	if got := splitJoined(a); len(got) != 1 || got[0] != a {
		t.Errorf("Expected single error, got %v", got)
	}
}
