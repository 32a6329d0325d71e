// Package prefill reconciles schema-declared default values with externally
// sourced overrides (user profile, session context) into the initial form
// state. The merge is a pure transform applied exactly once per form
// instantiation; it performs no validation, invalid defaults surface later as
// server-side validation errors.
package prefill

import (
	"github.com/goliatone/go-requestform/pkg/model"
)

// Overrides holds the externally supplied values for the well-known
// overridable fields. Zero values mean "no override".
type Overrides struct {
	Email        string
	CCs          []string
	Organization string
	DueDate      string
}

// Merged is the prefill output consumed by the form state controller.
type Merged struct {
	Fields       []model.Field
	Email        *model.Field
	CC           *model.Field
	Organization *model.Field
	DueDate      *model.Field
}

// Merge applies override-preferring semantics: when an override is present and
// the matching field exists in the schema, the override replaces the schema
// default; otherwise the schema default is used verbatim. Fields with no
// override mechanism always keep their declared default.
func Merge(form model.RequestForm, overrides Overrides) Merged {
	out := Merged{Fields: make([]model.Field, 0, len(form.Fields))}
	for _, f := range form.Fields {
		out.Fields = append(out.Fields, f.Clone())
	}

	out.Email = overrideString(form.EmailField, overrides.Email)
	out.CC = overrideList(form.CCField, overrides.CCs)
	out.Organization = overrideString(form.OrganizationField, overrides.Organization)
	out.DueDate = overrideString(form.DueDateField, overrides.DueDate)
	return out
}

func overrideString(field *model.Field, value string) *model.Field {
	if field == nil {
		return nil
	}
	clone := field.Clone()
	if value != "" {
		clone.Value = model.StringValue(value)
	}
	return &clone
}

func overrideList(field *model.Field, values []string) *model.Field {
	if field == nil {
		return nil
	}
	clone := field.Clone()
	if len(values) > 0 {
		clone.Value = model.ListValue(append([]string(nil), values...))
	}
	return &clone
}
