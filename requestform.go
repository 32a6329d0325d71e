// Package requestform renders and submits server-described ticket request
// forms: a form's field set, visibility rules and submission target vary per
// deployment and are interpreted at runtime from a declarative document.
package requestform

import (
	"context"

	internalloader "github.com/goliatone/go-requestform/internal/schema/loader"
	"github.com/goliatone/go-requestform/pkg/model"
	"github.com/goliatone/go-requestform/pkg/prefill"
	"github.com/goliatone/go-requestform/pkg/schema"
	"github.com/goliatone/go-requestform/pkg/session"
	"github.com/goliatone/go-requestform/pkg/validation"
)

// Field aliases the model Field for convenience.
type Field = model.Field

// FieldType aliases the sealed field type enumeration.
type FieldType = model.FieldType

// RequestForm aliases the parsed form aggregate.
type RequestForm = model.RequestForm

// Overrides aliases the prefill override set.
type Overrides = prefill.Overrides

// Session aliases the per-instance runtime.
type Session = session.Session

// Option aliases the session option type.
type Option = session.Option

// NewSession mounts a form instance: validates the form, merges prefill
// overrides and wires state, visibility and submission.
func NewSession(form model.RequestForm, options ...Option) (*Session, error) {
	return session.New(form, options...)
}

// Load fetches and parses a form document from a file, fs.FS or URL source.
func Load(ctx context.Context, src schema.Source, options schema.LoaderOptions) (model.RequestForm, error) {
	loader := internalloader.New(options)
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return model.RequestForm{}, err
	}
	return schema.Parse(doc)
}

// Validate reports every schema-level problem in a parsed form.
func Validate(form model.RequestForm) validation.Result {
	return validation.ValidateForm(form)
}
