package requestform_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-requestform"
	"github.com/goliatone/go-requestform/pkg/model"
	"github.com/goliatone/go-requestform/pkg/schema"
)

func TestLoadExampleFixture(t *testing.T) {
	form, err := requestform.Load(context.Background(),
		schema.SourceFromFile("examples/fixtures/request_form.json"),
		schema.LoaderOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(form.Fields) != 6 {
		t.Fatalf("expected 6 fields, got %d", len(form.Fields))
	}
	if form.Target.Action != "/hc/requests" {
		t.Fatalf("target action mismatch: %q", form.Target.Action)
	}
	if form.EmailField == nil || form.DueDateField == nil || form.DescriptionMimetypeField == nil {
		t.Fatalf("special fields missing: %+v", form)
	}
	if len(form.Conditions) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(form.Conditions))
	}

	result := requestform.Validate(form)
	if !result.Valid {
		t.Fatalf("fixture must validate, issues: %+v", result.Issues)
	}
}

func TestNewSessionFromFixture(t *testing.T) {
	form, err := requestform.Load(context.Background(),
		schema.SourceFromFile("examples/fixtures/request_form.json"),
		schema.LoaderOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	sess, err := requestform.NewSession(form)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	// the conditional release-version field starts hidden
	for _, f := range sess.Visible() {
		if f.Name == "request[custom_fields][360002]" {
			t.Fatalf("conditional field visible before its trigger matches")
		}
	}

	if err := sess.SetValue("request[custom_fields][360001]", model.BoolValue(true)); err != nil {
		t.Fatalf("set trigger: %v", err)
	}
	found := false
	for _, f := range sess.Visible() {
		if f.Name == "request[custom_fields][360002]" {
			found = true
			if !f.Required {
				t.Fatalf("revealed field must be required while its condition holds")
			}
		}
	}
	if !found {
		t.Fatalf("conditional field missing after trigger flip")
	}
}
