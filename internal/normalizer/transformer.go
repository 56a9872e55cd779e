package normalizer

import (
	"newsclip/internal/models"
)

// Transformer maps API items to the articles consumed by the deduper.
type Transformer struct{}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// Transform converts an item into a RawArticle tagged with the query that found it.
// Text fields are passed through untouched so that similarity and keyword
// checks see exactly what the API returned.
func (t *Transformer) Transform(item models.SearchItem, query string) models.RawArticle {
	link := item.Link
	if link == "" {
		link = item.OriginalLink
	}

	return models.RawArticle{
		Title:        item.Title,
		Description:  item.Description,
		Link:         link,
		OriginalLink: item.OriginalLink,
		PubDate:      item.PubDate,
		Query:        query,
	}
}
