package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValueShape signals a field value whose shape does not match its declared
// field type. Shape mismatches are defects of schema or state handling, never
// user input, so callers should treat them as fatal.
var ErrValueShape = errors.New("model: value shape does not match field type")

// ValueKind tags the shape of a field value.
type ValueKind int

const (
	ValueKindEmpty ValueKind = iota
	ValueKindString
	ValueKindBool
	ValueKindList
)

func (k ValueKind) String() string {
	switch k {
	case ValueKindEmpty:
		return "empty"
	case ValueKindString:
		return "string"
	case ValueKindBool:
		return "bool"
	case ValueKindList:
		return "list"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is the variant-typed payload of a field. The set of implementations is
// sealed; switches over Kind cover every shape a field can carry.
type Value interface {
	Kind() ValueKind
	isValue()
}

// EmptyValue is the zero payload shared by untouched fields of any type.
type EmptyValue struct{}

// StringValue carries text, dates, dropdown selections and numbers-as-text.
type StringValue string

// BoolValue carries checkbox state.
type BoolValue bool

// ListValue carries ordered multi-select and cc-list entries.
type ListValue []string

func (EmptyValue) Kind() ValueKind  { return ValueKindEmpty }
func (StringValue) Kind() ValueKind { return ValueKindString }
func (BoolValue) Kind() ValueKind   { return ValueKindBool }
func (ListValue) Kind() ValueKind   { return ValueKindList }

func (EmptyValue) isValue()  {}
func (StringValue) isValue() {}
func (BoolValue) isValue()   {}
func (ListValue) isValue()   {}

// ShapeFor returns the value kind a populated field of the given type must
// carry. EmptyValue is additionally legal for every type.
func ShapeFor(ft FieldType) ValueKind {
	switch ft {
	case FieldTypeCheckbox:
		return ValueKindBool
	case FieldTypeMultiSelect, FieldTypeCC:
		return ValueKindList
	case FieldTypeAttachments:
		return ValueKindList
	default:
		return ValueKindString
	}
}

// CheckShape validates the type/value invariant for one field.
func CheckShape(ft FieldType, v Value) error {
	if v == nil || v.Kind() == ValueKindEmpty {
		return nil
	}
	if want := ShapeFor(ft); v.Kind() != want {
		return fmt.Errorf("%w: field type %q wants %s, got %s", ErrValueShape, ft, want, v.Kind())
	}
	return nil
}

// CloneValue deep-copies a value so derived views never alias list backing
// arrays.
func CloneValue(v Value) Value {
	if v == nil {
		return nil
	}
	if list, ok := v.(ListValue); ok {
		return ListValue(append([]string(nil), list...))
	}
	return v
}

// ValueEmpty reports whether the value is absent or a blank payload.
func ValueEmpty(v Value) bool {
	switch tv := v.(type) {
	case nil, EmptyValue:
		return true
	case StringValue:
		return strings.TrimSpace(string(tv)) == ""
	case BoolValue:
		return false
	case ListValue:
		return len(tv) == 0
	default:
		return false
	}
}

// ValueString coerces a value to the string the wire format expects. Bool maps
// to "on"/"" the way a native checkbox posts; lists join with commas.
func ValueString(v Value) string {
	switch tv := v.(type) {
	case nil, EmptyValue:
		return ""
	case StringValue:
		return string(tv)
	case BoolValue:
		if bool(tv) {
			return "on"
		}
		return ""
	case ListValue:
		return strings.Join(tv, ",")
	default:
		return ""
	}
}

// ValueAny unwraps the payload for JSON serialization.
func ValueAny(v Value) any {
	switch tv := v.(type) {
	case nil, EmptyValue:
		return nil
	case StringValue:
		return string(tv)
	case BoolValue:
		return bool(tv)
	case ListValue:
		return []string(tv)
	default:
		return nil
	}
}

// CoerceValue converts a decoded document payload into the sealed Value shape
// for the given field type. Invalid payload shapes are rejected with
// ErrValueShape; validation of the content itself is deferred to the server.
func CoerceValue(ft FieldType, raw any) (Value, error) {
	if raw == nil {
		return EmptyValue{}, nil
	}
	switch payload := raw.(type) {
	case string:
		if want := ShapeFor(ft); want == ValueKindList {
			if strings.TrimSpace(payload) == "" {
				return EmptyValue{}, nil
			}
			return ListValue{payload}, nil
		}
		if ft == FieldTypeCheckbox {
			return BoolValue(payload == "on" || payload == "true"), nil
		}
		return StringValue(payload), nil
	case bool:
		if ft != FieldTypeCheckbox {
			return nil, fmt.Errorf("%w: boolean payload on %q field", ErrValueShape, ft)
		}
		return BoolValue(payload), nil
	case []any:
		if want := ShapeFor(ft); want != ValueKindList {
			return nil, fmt.Errorf("%w: list payload on %q field", ErrValueShape, ft)
		}
		out := make([]string, 0, len(payload))
		for _, entry := range payload {
			str, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("%w: list entry %T on %q field", ErrValueShape, entry, ft)
			}
			out = append(out, str)
		}
		if len(out) == 0 {
			return EmptyValue{}, nil
		}
		return ListValue(out), nil
	case []string:
		if want := ShapeFor(ft); want != ValueKindList {
			return nil, fmt.Errorf("%w: list payload on %q field", ErrValueShape, ft)
		}
		if len(payload) == 0 {
			return EmptyValue{}, nil
		}
		return ListValue(append([]string(nil), payload...)), nil
	case float64:
		// JSON numbers arrive as float64; integer/decimal fields keep them as text.
		return StringValue(strings.TrimSuffix(fmt.Sprintf("%v", payload), ".0")), nil
	case int:
		return StringValue(fmt.Sprintf("%d", payload)), nil
	case int64:
		return StringValue(fmt.Sprintf("%d", payload)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported payload %T on %q field", ErrValueShape, raw, ft)
	}
}
