// Package render maps form state into the read-only views the presentation
// layer consumes: component bindings per field type, hidden submission fields
// and server-side error placement. It produces no markup; widgets are external
// collaborators that receive a binding and an onChange channel.
package render

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-requestform/pkg/model"
)

// ErrUnhandledFieldType signals a field type outside the sealed set reaching
// the binding switch. This is a defect: schema parsing should have rejected
// the document.
var ErrUnhandledFieldType = errors.New("render: unhandled field type")

// Component identifiers the presentation layer registers widgets under.
const (
	ComponentInput       = "input"
	ComponentTextArea    = "textarea"
	ComponentRichText    = "rich-text"
	ComponentDropdown    = "dropdown"
	ComponentCheckbox    = "checkbox"
	ComponentDatePicker  = "date-picker"
	ComponentMultiSelect = "multi-select"
	ComponentTagger      = "tagger"
	ComponentCreditCard  = "credit-card"
	ComponentCCField     = "cc-field"
	ComponentAttachments = "attachments"
	ComponentHidden      = "hidden"
)

// Binding is the presentation contract for one visible field: which widget to
// mount and the field snapshot it receives.
type Binding struct {
	Component string
	Field     model.Field
	// Adjacent marks bindings injected next to their governing field, such as
	// the due-date picker following a task-valued dropdown.
	Adjacent bool
}

// Bind resolves the component binding for a single field. The switch is
// exhaustive over the sealed field type set; an unknown type is an error, not
// a silently skipped widget.
func Bind(field model.Field) (Binding, error) {
	component, err := componentFor(field)
	if err != nil {
		return Binding{}, err
	}
	return Binding{Component: component, Field: field.Clone()}, nil
}

// BindAll resolves bindings for an ordered visible field list.
func BindAll(fields []model.Field) ([]Binding, error) {
	out := make([]Binding, 0, len(fields))
	for _, field := range fields {
		binding, err := Bind(field)
		if err != nil {
			return nil, err
		}
		if field.Type == model.FieldTypeDueDate {
			binding.Adjacent = true
		}
		out = append(out, binding)
	}
	return out, nil
}

func componentFor(field model.Field) (string, error) {
	switch field.Type {
	case model.FieldTypeText, model.FieldTypeSubject, model.FieldTypeInteger,
		model.FieldTypeDecimal, model.FieldTypeRegexp:
		return ComponentInput, nil
	case model.FieldTypeDescription:
		return ComponentRichText, nil
	case model.FieldTypeTextarea:
		return ComponentTextArea, nil
	case model.FieldTypePriority, model.FieldTypeBasicPriority,
		model.FieldTypeTicketType, model.FieldTypeOrganization,
		model.FieldTypeTicketForm:
		return ComponentDropdown, nil
	case model.FieldTypeCheckbox:
		return ComponentCheckbox, nil
	case model.FieldTypeDate, model.FieldTypeDueDate:
		return ComponentDatePicker, nil
	case model.FieldTypeMultiSelect:
		return ComponentMultiSelect, nil
	case model.FieldTypeTagger:
		return ComponentTagger, nil
	case model.FieldTypeCreditCard:
		return ComponentCreditCard, nil
	case model.FieldTypeCC:
		return ComponentCCField, nil
	case model.FieldTypeAttachments:
		return ComponentAttachments, nil
	case model.FieldTypeHidden:
		return ComponentHidden, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnhandledFieldType, field.Type)
	}
}
