package model

import internalmodel "github.com/goliatone/go-requestform/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeText          = internalmodel.FieldTypeText
	FieldTypeSubject       = internalmodel.FieldTypeSubject
	FieldTypeDescription   = internalmodel.FieldTypeDescription
	FieldTypeTextarea      = internalmodel.FieldTypeTextarea
	FieldTypeInteger       = internalmodel.FieldTypeInteger
	FieldTypeDecimal       = internalmodel.FieldTypeDecimal
	FieldTypeRegexp        = internalmodel.FieldTypeRegexp
	FieldTypePriority      = internalmodel.FieldTypePriority
	FieldTypeBasicPriority = internalmodel.FieldTypeBasicPriority
	FieldTypeTicketType    = internalmodel.FieldTypeTicketType
	FieldTypeCheckbox      = internalmodel.FieldTypeCheckbox
	FieldTypeDate          = internalmodel.FieldTypeDate
	FieldTypeDueDate       = internalmodel.FieldTypeDueDate
	FieldTypeMultiSelect   = internalmodel.FieldTypeMultiSelect
	FieldTypeTagger        = internalmodel.FieldTypeTagger
	FieldTypeCreditCard    = internalmodel.FieldTypeCreditCard
	FieldTypeCC            = internalmodel.FieldTypeCC
	FieldTypeOrganization  = internalmodel.FieldTypeOrganization
	FieldTypeAttachments   = internalmodel.FieldTypeAttachments
	FieldTypeTicketForm    = internalmodel.FieldTypeTicketForm
	FieldTypeHidden        = internalmodel.FieldTypeHidden

	TaskSentinel = internalmodel.TaskSentinel
)

type Field = internalmodel.Field
type Option = internalmodel.Option
type Condition = internalmodel.Condition
type ConditionEffect = internalmodel.ConditionEffect
type ConditionTarget = internalmodel.ConditionTarget
type SubmitTarget = internalmodel.SubmitTarget
type RequestForm = internalmodel.RequestForm
type ServiceCatalogItem = internalmodel.ServiceCatalogItem

const (
	EffectShow = internalmodel.EffectShow
	EffectHide = internalmodel.EffectHide
)

// Value and its sealed implementations.
type Value = internalmodel.Value
type ValueKind = internalmodel.ValueKind
type EmptyValue = internalmodel.EmptyValue
type StringValue = internalmodel.StringValue
type BoolValue = internalmodel.BoolValue
type ListValue = internalmodel.ListValue

const (
	ValueKindEmpty  = internalmodel.ValueKindEmpty
	ValueKindString = internalmodel.ValueKindString
	ValueKindBool   = internalmodel.ValueKindBool
	ValueKindList   = internalmodel.ValueKindList
)

var ErrValueShape = internalmodel.ErrValueShape

// FieldTypes re-exports the full sealed type set.
func FieldTypes() []FieldType { return internalmodel.FieldTypes() }

// ShapeFor reports the value kind a populated field of the given type carries.
func ShapeFor(ft FieldType) ValueKind { return internalmodel.ShapeFor(ft) }

// CheckShape validates the type/value invariant for one field.
func CheckShape(ft FieldType, v Value) error { return internalmodel.CheckShape(ft, v) }

// CloneValue deep-copies a value.
func CloneValue(v Value) Value { return internalmodel.CloneValue(v) }

// ValueEmpty reports whether a value is absent or blank.
func ValueEmpty(v Value) bool { return internalmodel.ValueEmpty(v) }

// ValueString coerces a value to its wire string form.
func ValueString(v Value) string { return internalmodel.ValueString(v) }

// ValueAny unwraps the payload for JSON serialization.
func ValueAny(v Value) any { return internalmodel.ValueAny(v) }

// CoerceValue converts a decoded document payload into a sealed Value.
func CoerceValue(ft FieldType, raw any) (Value, error) {
	return internalmodel.CoerceValue(ft, raw)
}
