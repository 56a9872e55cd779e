package models

// SearchResponse is the JSON body returned by the news search API.
type SearchResponse struct {
	LastBuildDate string       `json:"lastBuildDate"`
	Items         []SearchItem `json:"items"`
	Total         int          `json:"total"`
	Start         int          `json:"start"`
	Display       int          `json:"display"`
}

// SearchItem is one entry of SearchResponse.Items.
type SearchItem struct {
	Title        string `json:"title" validate:"required"`
	OriginalLink string `json:"originallink" validate:"omitempty,url"`
	Link         string `json:"link" validate:"required_without=OriginalLink"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate" validate:"required"`
}
