// Package validation checks request form documents ahead of mounting,
// reporting every issue instead of stopping at the first. It layers the same
// checks a session performs (shape invariants, condition compilation) into a
// result suitable for tooling output.
package validation

import (
	"github.com/goliatone/go-requestform/pkg/model"
	"github.com/goliatone/go-requestform/pkg/schema"
	"github.com/goliatone/go-requestform/pkg/visibility"
)

// Issue represents a single validation problem with optional field metadata.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures the validation outcome for one document.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// ValidateDocument parses and validates a raw form document.
func ValidateDocument(doc schema.Document) Result {
	form, err := schema.Parse(doc)
	if err != nil {
		return Result{Issues: []Issue{{Message: err.Error()}}}
	}
	return ValidateForm(form)
}

// ValidateForm validates an already parsed form: the value-shape invariant on
// every field and the condition graph (unknown references, cycles).
func ValidateForm(form model.RequestForm) Result {
	result := Result{Valid: true}

	for _, f := range form.Fields {
		if err := model.CheckShape(f.Type, f.Value); err != nil {
			result.Valid = false
			result.Issues = append(result.Issues, Issue{Field: f.Name, Message: err.Error()})
		}
	}

	if _, err := visibility.Compile(form); err != nil {
		result.Valid = false
		result.Issues = append(result.Issues, Issue{Message: err.Error()})
	}

	return result
}
