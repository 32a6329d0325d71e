package schema

import (
	"bytes"
	"errors"
)

// DocumentFormat names the encoding a form document payload carries.
type DocumentFormat string

const (
	FormatJSON DocumentFormat = "json"
	FormatYAML DocumentFormat = "yaml"
)

// ErrNotFormDocument signals a payload that cannot be a form document. The
// usual culprit is a help center behind SSO answering the document URL with a
// sign-in page instead of the schema.
var ErrNotFormDocument = errors.New("schema: payload is not a form document")

// Document wraps the raw form document payload and its origin. The payload's
// format is sniffed once at construction.
type Document struct {
	source Source
	raw    []byte
	format DocumentFormat
}

// NewDocument constructs a Document wrapper while validating the inputs. HTML
// payloads are rejected here so a sign-in or error page fails loudly instead
// of surfacing as a cryptic decode error.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}
	if trimmed[0] == '<' {
		return Document{}, ErrNotFormDocument
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone, format: sniffFormat(trimmed)}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// sniffFormat decides the decode path: a payload opening with a JSON
// object/array delimiter is JSON, everything else is treated as YAML.
func sniffFormat(trimmed []byte) DocumentFormat {
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatYAML
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Format reports the sniffed payload encoding.
func (d Document) Format() DocumentFormat {
	return d.format
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
