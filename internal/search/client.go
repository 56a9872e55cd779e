// Package search fetches news articles for a keyword from the Naver search API.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"newsclip/internal/config"
	"newsclip/internal/logger"
	"newsclip/internal/models"
	"newsclip/internal/normalizer"
	"newsclip/pkg/utils"
)

// Search errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrDecodeResponse       = errors.New("failed to decode search response")
)

const (
	headerClientID     = "X-Naver-Client-Id"
	headerClientSecret = "X-Naver-Client-Secret"
	maxBodyBytes       = 4 << 20
)

// Client queries the news search API with config-driven retry logic.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	processor   *normalizer.Processor
	headers     *utils.HTTPHelper
	log         *logger.Logger
	tracer      trace.Tracer
	attempts    *AttemptLog
	retryPolicy config.RetryPolicy
	cfg         config.SearchConfig
	creds       config.Credentials
	sleep       func(context.Context, time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSleep replaces the backoff sleep, mainly for tests.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient creates a search client.
func NewClient(cfg config.SearchConfig, creds config.Credentials, retry config.RetryPolicy, log *logger.Logger, opts ...Option) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		processor:   normalizer.NewProcessor(),
		headers:     utils.NewHTTPHelper(cfg.UserAgent),
		log:         log,
		tracer:      otel.Tracer("newsclip/search"),
		attempts:    NewAttemptLog(),
		retryPolicy: retry,
		cfg:         cfg,
		creds:       creds,
		sleep:       sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Attempts returns the log of every request made by the client.
func (c *Client) Attempts() *AttemptLog {
	return c.attempts
}

// Search returns the articles found for keyword, newest first as ordered by
// the API. Items failing validation are logged and dropped.
func (c *Client) Search(ctx context.Context, keyword string) ([]models.RawArticle, error) {
	ctx, span := c.tracer.Start(ctx, "search.Search",
		trace.WithAttributes(attribute.String("search.keyword", keyword)),
	)
	defer span.End()

	resp, err := c.fetch(ctx, keyword)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	articles, itemErrs := c.processor.Process(resp, keyword)
	for _, itemErr := range itemErrs {
		c.log.Warn("⚠️  Dropping invalid search item", "keyword", keyword, "error", itemErr)
	}

	span.SetAttributes(
		attribute.Int("search.items", len(resp.Items)),
		attribute.Int("search.articles", len(articles)),
	)

	return articles, nil
}

// fetch performs the HTTP request, retrying transport errors and retryable status codes.
func (c *Client) fetch(ctx context.Context, keyword string) (*models.SearchResponse, error) {
	reqURL, err := c.buildURL(keyword)
	if err != nil {
		return nil, err
	}

	maxAttempts := c.retryPolicy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		startTime := time.Now()
		body, status, err := c.do(ctx, reqURL)
		duration := time.Since(startTime)

		c.attempts.Record(keyword, attempt, err == nil, err, status, duration)

		if err == nil {
			var resp models.SearchResponse
			if decodeErr := json.Unmarshal(body, &resp); decodeErr != nil {
				return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, decodeErr)
			}

			c.log.Debug("Search response", "keyword", keyword, "status", status, "items", len(resp.Items), "duration", duration)

			return &resp, nil
		}

		lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, maxAttempts, err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if status != 0 && !isRetryableStatus(status) {
			return nil, lastErr
		}

		c.log.Debug("Retrying search", "keyword", keyword, "attempt", attempt, "error", err)
	}

	return nil, lastErr
}

// do issues one GET request and returns the body of a 200 response.
func (c *Client) do(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = c.headers.BuildHeaders(map[string]string{
		headerClientID:     c.creds.ClientID,
		headerClientSecret: c.creds.ClientSecret,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Debug("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

func (c *Client) buildURL(keyword string) (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid search endpoint: %w", err)
	}

	start := c.cfg.Start
	if start < 1 {
		start = 1
	}

	display := c.cfg.Display
	if display < 1 {
		display = 100
	}

	sort := c.cfg.Sort
	if sort == "" {
		sort = "date"
	}

	q := u.Query()
	q.Set("query", keyword)
	q.Set("start", strconv.Itoa(start))
	q.Set("display", strconv.Itoa(display))
	q.Set("sort", sort)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusInternalServerError: // 500
		return true
	case http.StatusBadGateway: // 502
		return true
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	}

	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
