package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"newsclip/internal/models"
)

// Validation errors.
var (
	ErrNilResponse = errors.New("search response is nil")
	ErrInvalidItem = errors.New("invalid search item")
)

// Validator checks search items before they reach the deduper.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks that an item carries a title, a link and a publication date.
func (v *Validator) Validate(item models.SearchItem) error {
	if err := v.validate.Struct(item); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}

			return fmt.Errorf("%w: %s", ErrInvalidItem, strings.Join(fields, ", "))
		}

		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	return nil
}
