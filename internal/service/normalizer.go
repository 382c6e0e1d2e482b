package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/skillerhq/skiller/internal/domain"
)

// queryTermPattern accepts letters and spaces with a leading letter.
// Leading whitespace, digits, and symbols are rejected.
var queryTermPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*$`)

// ErrInvalidQuery is wrapped into normalization failures so callers can
// classify them without string matching.
var ErrInvalidQuery = fmt.Errorf("invalid query")

// RawQuery carries the unvalidated request parameters.
type RawQuery struct {
	Text     string `form:"query" validate:"required,queryterm"`
	Location string `form:"location"`
	JobLevel string `form:"job_level"`
}

// Normalizer validates a raw search request and canonicalizes it into a
// Query usable as a cache key.
type Normalizer struct {
	validate *validator.Validate
}

// NewNormalizer creates a Normalizer with the query-term rule registered.
func NewNormalizer() *Normalizer {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("queryterm", func(fl validator.FieldLevel) bool {
		return queryTermPattern.MatchString(fl.Field().String())
	})
	return &Normalizer{validate: v}
}

// Normalize validates the raw request and returns the canonical query:
// filters lower-cased and defaulted to "all" when absent. A well-formed
// query that later matches nothing is not a validation error.
func (n *Normalizer) Normalize(raw RawQuery) (domain.Query, error) {
	if err := n.validate.Struct(raw); err != nil {
		return domain.Query{}, fmt.Errorf("%w: %q", ErrInvalidQuery, raw.Text)
	}

	query := domain.Query{
		Text:     strings.TrimSpace(raw.Text),
		Location: normalizeFilter(raw.Location),
		JobLevel: normalizeFilter(raw.JobLevel),
	}
	return query, nil
}

func normalizeFilter(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return domain.FilterAll
	}
	return value
}
