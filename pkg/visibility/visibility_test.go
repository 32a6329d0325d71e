package visibility

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-requestform/pkg/model"
)

func conditionalForm() model.RequestForm {
	return model.RequestForm{
		Fields: []model.Field{
			{Name: "a", Type: model.FieldTypeText},
			{Name: "b", Type: model.FieldTypeText},
			{Name: "c", Type: model.FieldTypeText},
		},
		Conditions: []model.Condition{
			{
				Field:   "a",
				Values:  []string{"yes"},
				Effect:  model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "b", Required: true}},
			},
		},
	}
}

func visibleNames(fields []model.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

func TestUnconditionedFieldsAlwaysVisible(t *testing.T) {
	rs, err := Compile(conditionalForm())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got := visibleNames(rs.Visible(MapState{}))
	want := []string{"a", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
}

func TestShowConditionRevealsTarget(t *testing.T) {
	rs, err := Compile(conditionalForm())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := MapState{"a": model.StringValue("yes")}
	got := rs.Visible(state)
	if diff := cmp.Diff([]string{"a", "b", "c"}, visibleNames(got)); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	for _, f := range got {
		if f.Name == "b" && !f.Required {
			t.Fatalf("satisfied condition must mark its target required")
		}
	}
}

func TestShowConditionUnsatisfiedHidesTarget(t *testing.T) {
	rs, err := Compile(conditionalForm())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := MapState{"a": model.StringValue("no")}
	if diff := cmp.Diff([]string{"a", "c"}, visibleNames(rs.Visible(state))); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
}

func TestHideWinsOverShow(t *testing.T) {
	form := model.RequestForm{
		Fields: []model.Field{
			{Name: "a", Type: model.FieldTypeText},
			{Name: "b", Type: model.FieldTypeText},
			{Name: "target", Type: model.FieldTypeText},
		},
		Conditions: []model.Condition{
			{Field: "a", Values: []string{"x"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "target"}}},
			{Field: "b", Values: []string{"y"}, Effect: model.EffectHide,
				Targets: []model.ConditionTarget{{Field: "target"}}},
		},
	}
	rs, err := Compile(form)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := MapState{
		"a": model.StringValue("x"),
		"b": model.StringValue("y"),
	}
	for _, f := range rs.Visible(state) {
		if f.Name == "target" {
			t.Fatalf("hide must win when show and hide are both satisfied")
		}
	}
}

func TestEvaluationIsDeterministicAndIdempotent(t *testing.T) {
	rs, err := Compile(conditionalForm())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := MapState{"a": model.StringValue("yes"), "b": model.StringValue("text")}
	first := rs.Visible(state)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, rs.Visible(state)); diff != "" {
			t.Fatalf("evaluation %d diverged (-first +got):\n%s", i, diff)
		}
	}
}

func TestHiddenTriggerDoesNotSatisfyItsConditions(t *testing.T) {
	// a reveals b, b reveals c; with b hidden, b's satisfied-looking value
	// must not reveal c
	form := model.RequestForm{
		Fields: []model.Field{
			{Name: "a", Type: model.FieldTypeText},
			{Name: "b", Type: model.FieldTypeText},
			{Name: "c", Type: model.FieldTypeText},
		},
		Conditions: []model.Condition{
			{Field: "a", Values: []string{"yes"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "b"}}},
			{Field: "b", Values: []string{"go"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "c"}}},
		},
	}
	rs, err := Compile(form)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	state := MapState{"a": model.StringValue("no"), "b": model.StringValue("go")}
	if diff := cmp.Diff([]string{"a"}, visibleNames(rs.Visible(state))); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}

	state["a"] = model.StringValue("yes")
	if diff := cmp.Diff([]string{"a", "b", "c"}, visibleNames(rs.Visible(state))); diff != "" {
		t.Fatalf("visible mismatch after trigger flip (-want +got):\n%s", diff)
	}
}

func TestCheckboxTriggerMatchesOnValue(t *testing.T) {
	form := model.RequestForm{
		Fields: []model.Field{
			{Name: "escalate", Type: model.FieldTypeCheckbox},
			{Name: "reason", Type: model.FieldTypeText},
		},
		Conditions: []model.Condition{
			{Field: "escalate", Values: []string{"on"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "reason"}}},
		},
	}
	rs, err := Compile(form)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	hidden := rs.Visible(MapState{"escalate": model.BoolValue(false)})
	if diff := cmp.Diff([]string{"escalate"}, visibleNames(hidden)); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	shown := rs.Visible(MapState{"escalate": model.BoolValue(true)})
	if diff := cmp.Diff([]string{"escalate", "reason"}, visibleNames(shown)); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
}

func TestListTriggerMatchesOnAnyEntry(t *testing.T) {
	form := model.RequestForm{
		Fields: []model.Field{
			{Name: "products", Type: model.FieldTypeMultiSelect},
			{Name: "detail", Type: model.FieldTypeText},
		},
		Conditions: []model.Condition{
			{Field: "products", Values: []string{"mobile"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "detail"}}},
		},
	}
	rs, err := Compile(form)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := MapState{"products": model.ListValue{"web", "mobile"}}
	if diff := cmp.Diff([]string{"products", "detail"}, visibleNames(rs.Visible(state))); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileRejectsUnknownTrigger(t *testing.T) {
	form := model.RequestForm{
		Fields: []model.Field{{Name: "a", Type: model.FieldTypeText}},
		Conditions: []model.Condition{
			{Field: "ghost", Values: []string{"x"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "a"}}},
		},
	}
	if _, err := Compile(form); !errors.Is(err, ErrUnknownConditionField) {
		t.Fatalf("expected ErrUnknownConditionField, got %v", err)
	}
}

func TestCompileRejectsUnknownTarget(t *testing.T) {
	form := model.RequestForm{
		Fields: []model.Field{{Name: "a", Type: model.FieldTypeText}},
		Conditions: []model.Condition{
			{Field: "a", Values: []string{"x"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "ghost"}}},
		},
	}
	if _, err := Compile(form); !errors.Is(err, ErrUnknownConditionField) {
		t.Fatalf("expected ErrUnknownConditionField, got %v", err)
	}
}

func TestCompileRejectsCycle(t *testing.T) {
	form := model.RequestForm{
		Fields: []model.Field{
			{Name: "a", Type: model.FieldTypeText},
			{Name: "b", Type: model.FieldTypeText},
		},
		Conditions: []model.Condition{
			{Field: "a", Values: []string{"x"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "b"}}},
			{Field: "b", Values: []string{"y"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "a"}}},
		},
	}
	if _, err := Compile(form); !errors.Is(err, ErrConditionCycle) {
		t.Fatalf("expected ErrConditionCycle, got %v", err)
	}
}

func TestCompileRejectsSelfTarget(t *testing.T) {
	form := model.RequestForm{
		Fields: []model.Field{{Name: "a", Type: model.FieldTypeText}},
		Conditions: []model.Condition{
			{Field: "a", Values: []string{"x"}, Effect: model.EffectShow,
				Targets: []model.ConditionTarget{{Field: "a"}}},
		},
	}
	if _, err := Compile(form); !errors.Is(err, ErrConditionCycle) {
		t.Fatalf("expected ErrConditionCycle, got %v", err)
	}
}

func TestCompileRejectsUnknownEffect(t *testing.T) {
	form := model.RequestForm{
		Fields: []model.Field{
			{Name: "a", Type: model.FieldTypeText},
			{Name: "b", Type: model.FieldTypeText},
		},
		Conditions: []model.Condition{
			{Field: "a", Values: []string{"x"}, Effect: "toggle",
				Targets: []model.ConditionTarget{{Field: "b"}}},
		},
	}
	if _, err := Compile(form); !errors.Is(err, ErrUnknownEffect) {
		t.Fatalf("expected ErrUnknownEffect, got %v", err)
	}
}

func dueDateForm() model.RequestForm {
	dd := model.Field{Name: "request[due_date]", Type: model.FieldTypeDueDate, Label: "Due date"}
	return model.RequestForm{
		Fields: []model.Field{
			{Name: "request[subject]", Type: model.FieldTypeSubject},
			{Name: "request[priority]", Type: model.FieldTypePriority, Options: []model.Option{
				{Label: "Low", Value: "low"},
				{Label: "Task", Value: model.TaskSentinel},
			}},
			{Name: "request[description]", Type: model.FieldTypeDescription},
		},
		DueDateField: &dd,
	}
}

func TestDueDateAppearsAfterGateOnTaskValue(t *testing.T) {
	rs, err := Compile(dueDateForm())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := MapState{"request[priority]": model.StringValue(model.TaskSentinel)}
	got := visibleNames(rs.Visible(state))
	want := []string{"request[subject]", "request[priority]", "request[due_date]", "request[description]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("due date placement mismatch (-want +got):\n%s", diff)
	}
}

func TestDueDateHiddenForOtherValues(t *testing.T) {
	rs, err := Compile(dueDateForm())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, value := range []model.Value{model.EmptyValue{}, model.StringValue("low")} {
		got := visibleNames(rs.Visible(MapState{"request[priority]": value}))
		want := []string{"request[subject]", "request[priority]", "request[description]"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("due date leaked for %v (-want +got):\n%s", value, diff)
		}
	}
}

func TestVisibleSubstitutesStateValues(t *testing.T) {
	rs, err := Compile(conditionalForm())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := MapState{"c": model.StringValue("current")}
	for _, f := range rs.Visible(state) {
		if f.Name == "c" && f.Value != model.StringValue("current") {
			t.Fatalf("state value not substituted, got %#v", f.Value)
		}
	}
}
