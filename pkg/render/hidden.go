package render

import (
	"fmt"
	"sort"
	"strings"
)

// AuthenticityTokenName is the hidden input carrying the anti-forgery token on
// native submissions.
const AuthenticityTokenName = "authenticity_token"

const (
	// MimetypeHTML marks a rich-text description body.
	MimetypeHTML = "text/html"
	// MimetypePlain marks a plain-text description body.
	MimetypePlain = "text/plain"
)

// HiddenField represents a hidden form input emitted alongside the visible
// fields. Use the helpers (AuthenticityToken, DescriptionMimetype) to add the
// common ones without repeating boilerplate.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// AuthenticityToken constructs the hidden field the submission pipeline
// appends after the token fetch.
func AuthenticityToken(token string) HiddenField {
	return Hidden(AuthenticityTokenName, token)
}

// DescriptionMimetype constructs the hidden field signalling whether the
// description body is rich text or plain text.
func DescriptionMimetype(name string, richText bool) HiddenField {
	if richText {
		return Hidden(name, MimetypeHTML)
	}
	return Hidden(name, MimetypePlain)
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// submission. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		clean[key] = value
	}
	if len(clean) == 0 {
		return nil
	}

	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{
			Name:  name,
			Value: clean[name],
		})
	}
	return result
}
