package model

// FieldType enumerates the closed set of ticket field kinds a request form
// document may declare. The set is sealed: schema parsing rejects unknown
// values and downstream switches treat an unhandled kind as an error.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeSubject       FieldType = "subject"
	FieldTypeDescription   FieldType = "description"
	FieldTypeTextarea      FieldType = "textarea"
	FieldTypeInteger       FieldType = "integer"
	FieldTypeDecimal       FieldType = "decimal"
	FieldTypeRegexp        FieldType = "regexp"
	FieldTypePriority      FieldType = "priority"
	FieldTypeBasicPriority FieldType = "basic_priority"
	FieldTypeTicketType    FieldType = "tickettype"
	FieldTypeCheckbox      FieldType = "checkbox"
	FieldTypeDate          FieldType = "date"
	FieldTypeDueDate       FieldType = "due_date"
	FieldTypeMultiSelect   FieldType = "multiselect"
	FieldTypeTagger        FieldType = "tagger"
	FieldTypeCreditCard    FieldType = "partialcreditcard"
	FieldTypeCC            FieldType = "cc"
	FieldTypeOrganization  FieldType = "organization"
	FieldTypeAttachments   FieldType = "attachments"
	FieldTypeTicketForm    FieldType = "ticket_form"
	FieldTypeHidden        FieldType = "hidden"
)

// TaskSentinel is the dropdown value that makes the due-date field relevant.
// Priority/ticket-type dropdowns gate the due-date field on this value.
const TaskSentinel = "task"

// FieldTypes returns every known field type. Primarily useful for tests and
// for exhaustiveness checks in binding code.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText, FieldTypeSubject, FieldTypeDescription, FieldTypeTextarea,
		FieldTypeInteger, FieldTypeDecimal, FieldTypeRegexp, FieldTypePriority,
		FieldTypeBasicPriority, FieldTypeTicketType, FieldTypeCheckbox,
		FieldTypeDate, FieldTypeDueDate, FieldTypeMultiSelect, FieldTypeTagger,
		FieldTypeCreditCard, FieldTypeCC, FieldTypeOrganization,
		FieldTypeAttachments, FieldTypeTicketForm, FieldTypeHidden,
	}
}

// Known reports whether ft is part of the sealed field type set.
func (ft FieldType) Known() bool {
	switch ft {
	case FieldTypeText, FieldTypeSubject, FieldTypeDescription, FieldTypeTextarea,
		FieldTypeInteger, FieldTypeDecimal, FieldTypeRegexp, FieldTypePriority,
		FieldTypeBasicPriority, FieldTypeTicketType, FieldTypeCheckbox,
		FieldTypeDate, FieldTypeDueDate, FieldTypeMultiSelect, FieldTypeTagger,
		FieldTypeCreditCard, FieldTypeCC, FieldTypeOrganization,
		FieldTypeAttachments, FieldTypeTicketForm, FieldTypeHidden:
		return true
	default:
		return false
	}
}

// DueDateGate reports whether the field type is a dropdown whose committed
// value can gate the due-date field.
func (ft FieldType) DueDateGate() bool {
	switch ft {
	case FieldTypePriority, FieldTypeBasicPriority, FieldTypeTicketType:
		return true
	default:
		return false
	}
}

// Option is a selectable choice on a dropdown, tagger or multi-select field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Field models a single input of a request form. Value always satisfies the
// shape declared by Type (see ShapeFor); schema parsing and the form state
// controller both enforce the invariant.
type Field struct {
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
	Error       string    `json:"error,omitempty"`
	Value       Value     `json:"value,omitempty"`
	Options     []Option  `json:"options,omitempty"`
}

// Clone returns a deep copy of the field so callers can hand out derived views
// without sharing mutable backing slices.
func (f Field) Clone() Field {
	out := f
	out.Value = CloneValue(f.Value)
	if len(f.Options) > 0 {
		out.Options = append([]Option(nil), f.Options...)
	}
	return out
}

// ConditionEffect says what an end-user condition does to its targets when the
// trigger matches.
type ConditionEffect string

const (
	EffectShow ConditionEffect = "show"
	EffectHide ConditionEffect = "hide"
)

// ConditionTarget names a field affected by a condition. Required marks the
// target as mandatory while the condition is satisfied.
type ConditionTarget struct {
	Field    string `json:"field"`
	Required bool   `json:"required,omitempty"`
}

// Condition is one end-user condition: when the trigger field's current value
// matches any of Values, apply Effect to every target. The trigger is
// referenced by name and must exist in the form's field set.
type Condition struct {
	Field   string            `json:"field"`
	Values  []string          `json:"values"`
	Effect  ConditionEffect   `json:"effect"`
	Targets []ConditionTarget `json:"targets"`
}

// SubmitTarget carries the schema-declared native submission coordinates.
type SubmitTarget struct {
	Action        string `json:"action"`
	Method        string `json:"http_method"`
	AcceptCharset string `json:"accept_charset"`
}

// RequestForm is the aggregate a deployment describes declaratively: the
// ordered field set, the end-user conditions, the submission target and any
// top-level server error text. The well-known fields the help center treats
// specially are carried alongside the main field list, mirroring the inbound
// document contract.
type RequestForm struct {
	Fields     []Field      `json:"fields"`
	Conditions []Condition  `json:"conditions,omitempty"`
	Target     SubmitTarget `json:"target"`
	Errors     string       `json:"errors,omitempty"`

	TicketFormField          *Field  `json:"ticket_form_field,omitempty"`
	ParentIDField            *Field  `json:"parent_id_field,omitempty"`
	EmailField               *Field  `json:"email_field,omitempty"`
	CCField                  *Field  `json:"cc_field,omitempty"`
	OrganizationField        *Field  `json:"organization_field,omitempty"`
	DueDateField             *Field  `json:"due_date_field,omitempty"`
	AttachmentsField         *Field  `json:"attachments_field,omitempty"`
	DescriptionMimetypeField *Field  `json:"description_mimetype_field,omitempty"`
	InlineAttachmentFields   []Field `json:"inline_attachments_fields,omitempty"`
}

// Field looks up a field by name in the main field list.
func (rf RequestForm) Field(name string) (Field, bool) {
	for _, f := range rf.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ServiceCatalogItem is a requestable offering whose submission goes through
// the JSON request-creation endpoint instead of a native form post.
type ServiceCatalogItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	FormID      int64  `json:"form_id"`
}
