// Package classify runs the LLM classification stage: it claims extracted
// documents, asks the model for a category judgment, and applies the
// confidence and fallback policy.
package classify

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/notion-insights/internal/schemas"
	"github.com/jonathan/notion-insights/internal/taxonomy"
)

// ParseError indicates the model response could not be turned into a valid
// classification. It triggers the fallback policy, not a retry.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("classification parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("classification parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Judgment is a validated model response.
type Judgment struct {
	Category    taxonomy.Category
	Subcategory taxonomy.Subcategory
	Confidence  float64
	Rationale   string
}

// rawJudgment mirrors the JSON shape the model is prompted to return.
type rawJudgment struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Confidence  float64 `json:"confidence"`
	Rationale   string  `json:"rationale"`
}

// ParseJudgment validates a raw model response against the response schema
// and the taxonomy. A sub-category outside its category's domain is a parse
// error even when both values exist individually.
func ParseJudgment(raw string) (*Judgment, error) {
	if err := schemas.Validate(schemas.ClassificationResponse, raw); err != nil {
		return nil, &ParseError{Message: "response failed schema validation", Cause: err}
	}

	var rj rawJudgment
	if err := json.Unmarshal([]byte(raw), &rj); err != nil {
		return nil, &ParseError{Message: "response is not valid JSON", Cause: err}
	}

	category, err := taxonomy.ParseCategory(rj.Category)
	if err != nil {
		return nil, &ParseError{Message: "unknown category", Cause: err}
	}
	subcategory, err := taxonomy.ParseSubcategory(category, rj.Subcategory)
	if err != nil {
		return nil, &ParseError{Message: "sub-category outside category domain", Cause: err}
	}

	return &Judgment{
		Category:    category,
		Subcategory: subcategory,
		Confidence:  rj.Confidence,
		Rationale:   rj.Rationale,
	}, nil
}
