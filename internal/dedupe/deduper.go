// Package dedupe drops near-duplicate search hits and keeps the ones that fall
// inside the reporting window and mention their keyword in the title.
package dedupe

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"newsclip/internal/models"
	"newsclip/pkg/similarity"
)

const (
	// DefaultThreshold is the similarity ratio above which two articles are duplicates.
	DefaultThreshold = 0.7
	// DefaultDescriptionLimit is the number of code points of the description that are kept.
	DefaultDescriptionLimit = 300
	// PubDateLayout is the publication date format used by the news API.
	PubDateLayout = time.RFC1123Z
	// DisplayLayout is the format of ResultArticle.Published.
	DisplayLayout = "2006-01-02 15:04:05"
)

// ErrInvalidPubDate is returned when an article's publication date cannot be parsed.
var ErrInvalidPubDate = errors.New("invalid publication date")

// ItemError describes a single article that could not be processed.
type ItemError struct {
	Err     error
	Keyword string
	Title   string
	Link    string
	Index   int
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (%q, keyword %q): %v", e.Index, e.Title, e.Keyword, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Outcome is what happened to an offered article.
type Outcome int

// Possible outcomes of Offer.
const (
	Accepted Outcome = iota
	Duplicate
	Rejected
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	case Rejected:
		return "rejected"
	case Invalid:
		return "invalid"
	}

	return "unknown"
}

// Window is an inclusive time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether Start <= t <= End.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// SeenSet holds the combined texts of every article offered to a category.
// It only grows and is not safe for concurrent use.
type SeenSet struct {
	texts []similarity.Text
}

// NewSeenSet creates an empty set.
func NewSeenSet() *SeenSet {
	return &SeenSet{}
}

// Add appends a combined text.
func (s *SeenSet) Add(text string) {
	s.add(similarity.Prepare(text))
}

func (s *SeenSet) add(text similarity.Text) {
	s.texts = append(s.texts, text)
}

// Len returns the number of texts seen.
func (s *SeenSet) Len() int {
	return len(s.texts)
}

// Matches reports whether any seen text is more similar than threshold to text.
func (s *SeenSet) Matches(text similarity.Text, threshold float64) bool {
	for _, seen := range s.texts {
		if similarity.Exceeds(seen, text, threshold) {
			return true
		}
	}

	return false
}

// Stats counts offers by outcome.
type Stats struct {
	Offered    int
	Accepted   int
	Duplicates int
	Rejected   int
	Invalid    int
}

// Deduper filters the articles of one category.
type Deduper struct {
	location  *time.Location
	seen      *SeenSet
	window    Window
	category  string
	results   []models.ResultArticle
	stats     Stats
	threshold float64
	descLimit int
}

// Option configures a Deduper.
type Option func(*Deduper)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(d *Deduper) {
		d.threshold = threshold
	}
}

// WithDescriptionLimit overrides DefaultDescriptionLimit.
func WithDescriptionLimit(limit int) Option {
	return func(d *Deduper) {
		d.descLimit = limit
	}
}

// WithLocation sets the zone used for ResultArticle.Published.
func WithLocation(loc *time.Location) Option {
	return func(d *Deduper) {
		if loc != nil {
			d.location = loc
		}
	}
}

// New creates a Deduper for category. A nil seen set starts empty.
func New(category string, seen *SeenSet, window Window, opts ...Option) *Deduper {
	if seen == nil {
		seen = NewSeenSet()
	}

	d := &Deduper{
		category:  category,
		seen:      seen,
		window:    window,
		threshold: DefaultThreshold,
		descLimit: DefaultDescriptionLimit,
		location:  time.Local,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Category returns the category name.
func (d *Deduper) Category() string {
	return d.category
}

// Seen returns the seen set.
func (d *Deduper) Seen() *SeenSet {
	return d.seen
}

// Stats returns the counters accumulated so far.
func (d *Deduper) Stats() Stats {
	return d.stats
}

// Offer runs one article through the duplicate check and the acceptance filter.
// A duplicate is still recorded in the seen set. The returned error is non-nil
// only when the outcome is Invalid.
func (d *Deduper) Offer(keyword string, raw models.RawArticle) (models.ResultArticle, Outcome, error) {
	d.stats.Offered++

	description := Truncate(raw.Description, d.descLimit)
	combined := similarity.Prepare(raw.Title + description)

	if d.seen.Matches(combined, d.threshold) {
		d.seen.add(combined)
		d.stats.Duplicates++

		return models.ResultArticle{}, Duplicate, nil
	}

	d.seen.add(combined)

	published, err := ParsePubDate(raw.PubDate)
	if err != nil {
		d.stats.Invalid++

		return models.ResultArticle{}, Invalid, err
	}

	if !d.window.Contains(published) || !strings.Contains(raw.Title, keyword) {
		d.stats.Rejected++

		return models.ResultArticle{}, Rejected, nil
	}

	article := models.ResultArticle{
		PublishedAt: published,
		Title:       raw.Title,
		Description: description,
		Link:        raw.Link,
		Published:   published.In(d.location).Format(DisplayLayout),
		Keyword:     keyword,
	}

	d.results = append(d.results, article)
	d.stats.Accepted++

	return article, Accepted, nil
}

// Process offers every article of a batch in order. It returns the articles
// accepted from this batch, oldest first, and the per-item failures joined
// into one error. A failing item never stops the batch.
func (d *Deduper) Process(keyword string, raws []models.RawArticle) ([]models.ResultArticle, error) {
	var (
		accepted []models.ResultArticle
		errs     []error
	)

	for i, raw := range raws {
		article, outcome, err := d.Offer(keyword, raw)
		if err != nil {
			errs = append(errs, &ItemError{
				Index:   i,
				Keyword: keyword,
				Title:   raw.Title,
				Link:    raw.Link,
				Err:     err,
			})

			continue
		}

		if outcome == Accepted {
			accepted = append(accepted, article)
		}
	}

	SortByPublished(accepted)

	return accepted, errors.Join(errs...)
}

// Results returns every article accepted so far, oldest first.
func (d *Deduper) Results() []models.ResultArticle {
	out := make([]models.ResultArticle, len(d.results))
	copy(out, d.results)
	SortByPublished(out)

	return out
}

// ParsePubDate parses a date such as "Mon, 02 Jan 2006 15:04:05 +0900".
func ParsePubDate(value string) (time.Time, error) {
	t, err := time.Parse(PubDateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidPubDate, value, err)
	}

	return t, nil
}

// SortByPublished orders articles by publication time, keeping scan order for ties.
func SortByPublished(articles []models.ResultArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.Before(articles[j].PublishedAt)
	})
}

// Truncate returns the first limit code points of s.
func Truncate(s string, limit int) string {
	if limit < 0 {
		return s
	}

	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}

	return s
}
