package render

import (
	"strings"

	"github.com/goliatone/go-requestform/pkg/model"
)

// ErrorMapping splits a server validation payload into field-level messages
// keyed by field name plus form-level messages. Server-side errors are
// advisory text placed adjacent to the offending field; they are not locally
// recoverable and never trigger a resubmit.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises form-level error slices,
// trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload places server messages against the form's fields. Messages
// keyed by a name absent from the field set become form-level so nothing is
// lost.
func MapErrorPayload(form model.RequestForm, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if form.Errors != "" {
		mapping.Form = append(mapping.Form, form.Errors)
	}

	known := make(map[string]struct{}, len(form.Fields))
	for _, field := range form.Fields {
		known[field.Name] = struct{}{}
	}

	for name, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		if _, ok := known[name]; !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// ApplyFieldErrors returns a copy of fields with per-field error text filled
// in from the mapping, for rendering adjacent to each input.
func ApplyFieldErrors(fields []model.Field, mapping ErrorMapping) []model.Field {
	out := make([]model.Field, 0, len(fields))
	for _, field := range fields {
		clone := field.Clone()
		if messages := mapping.Fields[field.Name]; len(messages) > 0 {
			clone.Error = strings.Join(messages, " ")
		}
		out = append(out, clone)
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
