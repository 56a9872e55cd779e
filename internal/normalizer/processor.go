// Package normalizer turns decoded search responses into raw articles.
package normalizer

import (
	"fmt"

	"newsclip/internal/models"
)

// Processor handles item validation and transformation.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a new processor instance.
func NewProcessor() *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
	}
}

// Process validates every item of resp and converts the valid ones, keeping
// the API order. Invalid items are reported individually and skipped.
func (p *Processor) Process(resp *models.SearchResponse, query string) ([]models.RawArticle, []error) {
	if resp == nil {
		return nil, []error{ErrNilResponse}
	}

	articles := make([]models.RawArticle, 0, len(resp.Items))

	var errs []error

	for i, item := range resp.Items {
		// 1. Validate the item
		if err := p.validator.Validate(item); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))

			continue
		}

		// 2. Transform the item
		articles = append(articles, p.transformer.Transform(item, query))
	}

	return articles, errs
}
