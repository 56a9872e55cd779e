// Package models defines data structures shared by the search client, deduper and formatter.
package models

import "time"

// RawArticle is a single search hit as returned by the news API.
type RawArticle struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Link         string `json:"link"`
	OriginalLink string `json:"originallink"`
	PubDate      string `json:"pubDate"`
	Query        string `json:"query"`
}

// ResultArticle is an accepted article ready for rendering.
type ResultArticle struct {
	PublishedAt time.Time `json:"publishedAt"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Published   string    `json:"published"`
	Keyword     string    `json:"keyword"`
}
