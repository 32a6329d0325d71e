// Package openapi imports request forms from OpenAPI documents. Deployments
// that describe their request-creation endpoint as an OpenAPI operation can
// derive a RequestForm from the operation's request body schema instead of
// authoring a separate form document.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-requestform/pkg/model"
)

// ErrOperationNotFound signals a missing operationId in the document.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// Options configures the import.
type Options struct {
	// ResolveReferences validates the document and resolves $ref entries
	// before extraction.
	ResolveReferences bool
	// AcceptCharset is stamped onto the derived submit target; defaults to
	// UTF-8.
	AcceptCharset string
}

// Import loads an OpenAPI document from raw bytes and derives a RequestForm
// from the named operation's request body schema. Property order follows the
// schema's required list first, then the remaining properties alphabetically,
// keeping the derived field order deterministic.
func Import(ctx context.Context, raw []byte, operationID string, options Options) (model.RequestForm, error) {
	if len(raw) == 0 {
		return model.RequestForm{}, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: options.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return model.RequestForm{}, fmt.Errorf("openapi: load document: %w", err)
	}
	if options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return model.RequestForm{}, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	method, path, operation := findOperation(spec, operationID)
	if operation == nil {
		return model.RequestForm{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	charset := options.AcceptCharset
	if charset == "" {
		charset = "UTF-8"
	}

	form := model.RequestForm{
		Target: model.SubmitTarget{
			Action:        path,
			Method:        method,
			AcceptCharset: charset,
		},
	}

	schema := requestSchema(operation)
	if schema == nil {
		return form, nil
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	for _, name := range orderedProperties(schema) {
		prop := schema.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		field, err := buildField(name, prop.Value, required[name])
		if err != nil {
			return model.RequestForm{}, err
		}
		form.Fields = append(form.Fields, field)
	}

	return form, nil
}

func findOperation(spec *openapi3.T, operationID string) (string, string, *openapi3.Operation) {
	if spec.Paths == nil {
		return "", "", nil
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			if operation != nil && operation.OperationID == operationID {
				return method, path, operation
			}
		}
	}
	return "", "", nil
}

func requestSchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	content := operation.RequestBody.Value.Content
	media := content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	return media.Schema.Value
}

func orderedProperties(schema *openapi3.Schema) []string {
	seen := make(map[string]bool, len(schema.Properties))
	var names []string
	for _, name := range schema.Required {
		if _, ok := schema.Properties[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var rest []string
	for name := range schema.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func buildField(name string, prop *openapi3.Schema, required bool) (model.Field, error) {
	ft, options := mapType(prop)
	value, err := defaultValue(ft, prop)
	if err != nil {
		return model.Field{}, fmt.Errorf("openapi: property %q: %w", name, err)
	}
	field := model.Field{
		Name:        name,
		Type:        ft,
		Label:       labelFor(name, prop),
		Description: prop.Description,
		Required:    required,
		Value:       value,
		Options:     options,
	}
	return field, nil
}

// mapType folds an OpenAPI property onto the sealed ticket field type set.
func mapType(prop *openapi3.Schema) (model.FieldType, []model.Option) {
	if len(prop.Enum) > 0 {
		return model.FieldTypeTagger, enumOptions(prop.Enum)
	}

	switch {
	case prop.Type.Is(openapi3.TypeBoolean):
		return model.FieldTypeCheckbox, nil
	case prop.Type.Is(openapi3.TypeInteger):
		return model.FieldTypeInteger, nil
	case prop.Type.Is(openapi3.TypeNumber):
		return model.FieldTypeDecimal, nil
	case prop.Type.Is(openapi3.TypeArray):
		return model.FieldTypeMultiSelect, arrayOptions(prop)
	case prop.Type.Is(openapi3.TypeString):
		switch prop.Format {
		case "date", "date-time":
			return model.FieldTypeDate, nil
		}
		if prop.Pattern != "" {
			return model.FieldTypeRegexp, nil
		}
		if strings.EqualFold(prop.Format, "textarea") {
			return model.FieldTypeTextarea, nil
		}
		return model.FieldTypeText, nil
	default:
		return model.FieldTypeText, nil
	}
}

func arrayOptions(prop *openapi3.Schema) []model.Option {
	if prop.Items == nil || prop.Items.Value == nil {
		return nil
	}
	return enumOptions(prop.Items.Value.Enum)
}

func enumOptions(enum []any) []model.Option {
	options := make([]model.Option, 0, len(enum))
	for _, entry := range enum {
		str, ok := entry.(string)
		if !ok {
			str = fmt.Sprint(entry)
		}
		options = append(options, model.Option{Label: str, Value: str})
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

func defaultValue(ft model.FieldType, prop *openapi3.Schema) (model.Value, error) {
	if prop.Default == nil {
		return model.EmptyValue{}, nil
	}
	return model.CoerceValue(ft, prop.Default)
}

func labelFor(name string, prop *openapi3.Schema) string {
	if prop.Title != "" {
		return prop.Title
	}
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(name)
	if cleaned == "" {
		return name
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}
