package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-requestform/pkg/model"
)

var (
	// ErrUnknownFieldType signals a field type outside the sealed set.
	ErrUnknownFieldType = errors.New("schema: unknown field type")
	// ErrDuplicateField signals a field name reused within one form document.
	ErrDuplicateField = errors.New("schema: duplicate field name")
)

type fieldDoc struct {
	ID          int64       `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"`
	Label       string      `json:"label" yaml:"label"`
	Description string      `json:"description" yaml:"description"`
	Required    bool        `json:"required" yaml:"required"`
	Error       string      `json:"error" yaml:"error"`
	Value       any         `json:"value" yaml:"value"`
	Options     []optionDoc `json:"options" yaml:"options"`
}

type optionDoc struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

type targetDoc struct {
	Field    string `json:"field" yaml:"field"`
	Required bool   `json:"required" yaml:"required"`
}

type conditionDoc struct {
	Field   string      `json:"field" yaml:"field"`
	Value   string      `json:"value" yaml:"value"`
	Values  []string    `json:"values" yaml:"values"`
	Effect  string      `json:"effect" yaml:"effect"`
	Targets []targetDoc `json:"targets" yaml:"targets"`
}

type formDoc struct {
	Fields        []fieldDoc     `json:"fields" yaml:"fields"`
	Conditions    []conditionDoc `json:"end_user_conditions" yaml:"end_user_conditions"`
	Action        string         `json:"action" yaml:"action"`
	HTTPMethod    string         `json:"http_method" yaml:"http_method"`
	AcceptCharset string         `json:"accept_charset" yaml:"accept_charset"`
	Errors        string         `json:"errors" yaml:"errors"`

	TicketFormField   *fieldDoc  `json:"ticket_form_field" yaml:"ticket_form_field"`
	ParentIDField     *fieldDoc  `json:"parent_id_field" yaml:"parent_id_field"`
	EmailField        *fieldDoc  `json:"email_field" yaml:"email_field"`
	CCField           *fieldDoc  `json:"cc_field" yaml:"cc_field"`
	OrganizationField *fieldDoc  `json:"organization_field" yaml:"organization_field"`
	DueDateField      *fieldDoc  `json:"due_date_field" yaml:"due_date_field"`
	AttachmentsField  *fieldDoc  `json:"attachments_field" yaml:"attachments_field"`
	DescriptionMime   *fieldDoc  `json:"description_mimetype_field" yaml:"description_mimetype_field"`
	InlineAttachments []fieldDoc `json:"inline_attachments_fields" yaml:"inline_attachments_fields"`
}

// Parse decodes a request form document (JSON or YAML) into the typed model,
// enforcing the sealed field type set, name uniqueness and the value-shape
// invariant. Condition reference and cycle validation happens when the
// condition list is compiled by the visibility engine; both run before first
// render.
func Parse(doc Document) (model.RequestForm, error) {
	raw := doc.Raw()

	var decoded formDoc
	if doc.Format() == FormatJSON {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return model.RequestForm{}, fmt.Errorf("schema: decode json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(raw, &decoded); err != nil {
			return model.RequestForm{}, fmt.Errorf("schema: decode yaml: %w", err)
		}
	}

	form := model.RequestForm{
		Target: model.SubmitTarget{
			Action:        decoded.Action,
			Method:        decoded.HTTPMethod,
			AcceptCharset: decoded.AcceptCharset,
		},
		Errors: decoded.Errors,
	}

	seen := make(map[string]struct{}, len(decoded.Fields))
	for _, fd := range decoded.Fields {
		field, err := buildField(fd)
		if err != nil {
			return model.RequestForm{}, err
		}
		if _, dup := seen[field.Name]; dup {
			return model.RequestForm{}, fmt.Errorf("%w: %q", ErrDuplicateField, field.Name)
		}
		seen[field.Name] = struct{}{}
		form.Fields = append(form.Fields, field)
	}

	for _, cd := range decoded.Conditions {
		form.Conditions = append(form.Conditions, buildCondition(cd))
	}

	var err error
	if form.TicketFormField, err = buildOptional(decoded.TicketFormField, model.FieldTypeTicketForm); err != nil {
		return model.RequestForm{}, err
	}
	if form.ParentIDField, err = buildOptional(decoded.ParentIDField, model.FieldTypeHidden); err != nil {
		return model.RequestForm{}, err
	}
	if form.EmailField, err = buildOptional(decoded.EmailField, model.FieldTypeText); err != nil {
		return model.RequestForm{}, err
	}
	if form.CCField, err = buildOptional(decoded.CCField, model.FieldTypeCC); err != nil {
		return model.RequestForm{}, err
	}
	if form.OrganizationField, err = buildOptional(decoded.OrganizationField, model.FieldTypeOrganization); err != nil {
		return model.RequestForm{}, err
	}
	if form.DueDateField, err = buildOptional(decoded.DueDateField, model.FieldTypeDueDate); err != nil {
		return model.RequestForm{}, err
	}
	if form.AttachmentsField, err = buildOptional(decoded.AttachmentsField, model.FieldTypeAttachments); err != nil {
		return model.RequestForm{}, err
	}
	if form.DescriptionMimetypeField, err = buildOptional(decoded.DescriptionMime, model.FieldTypeHidden); err != nil {
		return model.RequestForm{}, err
	}
	for _, fd := range decoded.InlineAttachments {
		field, err := buildField(fd)
		if err != nil {
			return model.RequestForm{}, err
		}
		form.InlineAttachmentFields = append(form.InlineAttachmentFields, field)
	}

	return form, nil
}

func buildField(fd fieldDoc) (model.Field, error) {
	ft := model.FieldType(fd.Type)
	if !ft.Known() {
		return model.Field{}, fmt.Errorf("%w: %q on field %q", ErrUnknownFieldType, fd.Type, fd.Name)
	}
	value, err := model.CoerceValue(ft, fd.Value)
	if err != nil {
		return model.Field{}, fmt.Errorf("schema: field %q: %w", fd.Name, err)
	}
	field := model.Field{
		ID:          fd.ID,
		Name:        fd.Name,
		Type:        ft,
		Label:       fd.Label,
		Description: fd.Description,
		Required:    fd.Required,
		Error:       fd.Error,
		Value:       value,
	}
	for _, od := range fd.Options {
		field.Options = append(field.Options, model.Option{Label: od.Label, Value: od.Value})
	}
	return field, nil
}

// buildOptional builds a well-known special field, defaulting the type when
// the document omits it.
func buildOptional(fd *fieldDoc, fallback model.FieldType) (*model.Field, error) {
	if fd == nil {
		return nil, nil
	}
	if fd.Type == "" {
		fd.Type = string(fallback)
	}
	field, err := buildField(*fd)
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func buildCondition(cd conditionDoc) model.Condition {
	cond := model.Condition{
		Field:  cd.Field,
		Values: append([]string(nil), cd.Values...),
		Effect: model.ConditionEffect(cd.Effect),
	}
	if cd.Value != "" {
		cond.Values = append(cond.Values, cd.Value)
	}
	if cond.Effect == "" {
		cond.Effect = model.EffectShow
	}
	for _, td := range cd.Targets {
		cond.Targets = append(cond.Targets, model.ConditionTarget{
			Field:    td.Field,
			Required: td.Required,
		})
	}
	return cond
}
