package model

import (
	"errors"
	"testing"
)

func TestCheckShapeAcceptsEmptyForEveryType(t *testing.T) {
	for _, ft := range FieldTypes() {
		if err := CheckShape(ft, EmptyValue{}); err != nil {
			t.Fatalf("empty value rejected for %q: %v", ft, err)
		}
		if err := CheckShape(ft, nil); err != nil {
			t.Fatalf("nil value rejected for %q: %v", ft, err)
		}
	}
}

func TestCheckShapeRejectsMismatch(t *testing.T) {
	cases := []struct {
		ft    FieldType
		value Value
	}{
		{FieldTypeCheckbox, StringValue("on")},
		{FieldTypeText, BoolValue(true)},
		{FieldTypeMultiSelect, StringValue("a")},
		{FieldTypeCC, BoolValue(false)},
		{FieldTypePriority, ListValue{"low"}},
	}
	for _, tc := range cases {
		err := CheckShape(tc.ft, tc.value)
		if err == nil {
			t.Fatalf("expected shape error for %q with %s value", tc.ft, tc.value.Kind())
		}
		if !errors.Is(err, ErrValueShape) {
			t.Fatalf("expected ErrValueShape, got %v", err)
		}
	}
}

func TestCheckShapeAcceptsMatchingShapes(t *testing.T) {
	cases := []struct {
		ft    FieldType
		value Value
	}{
		{FieldTypeCheckbox, BoolValue(true)},
		{FieldTypeText, StringValue("hello")},
		{FieldTypeMultiSelect, ListValue{"a", "b"}},
		{FieldTypeCC, ListValue{"a@example.com"}},
		{FieldTypeDueDate, StringValue("2026-09-01")},
	}
	for _, tc := range cases {
		if err := CheckShape(tc.ft, tc.value); err != nil {
			t.Fatalf("unexpected shape error for %q: %v", tc.ft, err)
		}
	}
}

func TestValueStringWireFormat(t *testing.T) {
	if got := ValueString(BoolValue(true)); got != "on" {
		t.Fatalf("checked checkbox should serialize as %q, got %q", "on", got)
	}
	if got := ValueString(BoolValue(false)); got != "" {
		t.Fatalf("unchecked checkbox should serialize empty, got %q", got)
	}
	if got := ValueString(ListValue{"a", "b"}); got != "a,b" {
		t.Fatalf("list should join with comma, got %q", got)
	}
	if got := ValueString(EmptyValue{}); got != "" {
		t.Fatalf("empty should serialize empty, got %q", got)
	}
	if got := ValueString(nil); got != "" {
		t.Fatalf("nil should serialize empty, got %q", got)
	}
}

func TestCloneValueDetachesListBacking(t *testing.T) {
	original := ListValue{"a", "b"}
	clone := CloneValue(original).(ListValue)
	clone[0] = "mutated"
	if original[0] != "a" {
		t.Fatalf("clone aliases original backing array")
	}
}

func TestValueEmpty(t *testing.T) {
	if !ValueEmpty(nil) || !ValueEmpty(EmptyValue{}) {
		t.Fatalf("nil and EmptyValue must be empty")
	}
	if !ValueEmpty(StringValue("   ")) {
		t.Fatalf("whitespace-only string must be empty")
	}
	if ValueEmpty(StringValue("x")) {
		t.Fatalf("populated string must not be empty")
	}
	if ValueEmpty(BoolValue(false)) {
		t.Fatalf("checkbox state is never empty once committed")
	}
	if !ValueEmpty(ListValue{}) {
		t.Fatalf("zero-length list must be empty")
	}
}

func TestCoerceValueString(t *testing.T) {
	v, err := CoerceValue(FieldTypeText, "hello")
	if err != nil {
		t.Fatalf("coerce string: %v", err)
	}
	if v != StringValue("hello") {
		t.Fatalf("got %#v", v)
	}
}

func TestCoerceValueCheckboxFromString(t *testing.T) {
	v, err := CoerceValue(FieldTypeCheckbox, "on")
	if err != nil {
		t.Fatalf("coerce checkbox: %v", err)
	}
	if v != BoolValue(true) {
		t.Fatalf("expected true, got %#v", v)
	}
	v, err = CoerceValue(FieldTypeCheckbox, "off")
	if err != nil {
		t.Fatalf("coerce checkbox: %v", err)
	}
	if v != BoolValue(false) {
		t.Fatalf("expected false, got %#v", v)
	}
}

func TestCoerceValueListOnScalarFieldFails(t *testing.T) {
	if _, err := CoerceValue(FieldTypeText, []any{"a"}); !errors.Is(err, ErrValueShape) {
		t.Fatalf("expected ErrValueShape, got %v", err)
	}
}

func TestCoerceValueListEntries(t *testing.T) {
	v, err := CoerceValue(FieldTypeMultiSelect, []any{"a", "b"})
	if err != nil {
		t.Fatalf("coerce list: %v", err)
	}
	list, ok := v.(ListValue)
	if !ok || len(list) != 2 {
		t.Fatalf("expected two-entry list, got %#v", v)
	}
}

func TestCoerceValueEmptyListCollapses(t *testing.T) {
	v, err := CoerceValue(FieldTypeCC, []any{})
	if err != nil {
		t.Fatalf("coerce empty list: %v", err)
	}
	if _, ok := v.(EmptyValue); !ok {
		t.Fatalf("expected EmptyValue, got %#v", v)
	}
}

func TestCoerceValueJSONNumber(t *testing.T) {
	v, err := CoerceValue(FieldTypeInteger, float64(42))
	if err != nil {
		t.Fatalf("coerce number: %v", err)
	}
	if v != StringValue("42") {
		t.Fatalf("expected \"42\", got %#v", v)
	}
}

func TestCoerceValueNil(t *testing.T) {
	v, err := CoerceValue(FieldTypeText, nil)
	if err != nil {
		t.Fatalf("coerce nil: %v", err)
	}
	if _, ok := v.(EmptyValue); !ok {
		t.Fatalf("expected EmptyValue, got %#v", v)
	}
}
