// Package testsupport provides shared fixtures and a fake help-center server
// for contract tests across the module.
package testsupport

import (
	"context"
	"os"
	"testing"

	pkgmodel "github.com/goliatone/go-requestform/pkg/model"
	pkgschema "github.com/goliatone/go-requestform/pkg/schema"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// LoadForm reads a schema fixture and parses it into a request form. Testing
// helpers fail the test on error to keep contract tests concise.
func LoadForm(t *testing.T, path string) pkgmodel.RequestForm {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema fixture: %v", err)
	}
	doc, err := pkgschema.NewDocument(pkgschema.SourceFromFile(path), data)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	form, err := pkgschema.Parse(doc)
	if err != nil {
		t.Fatalf("parse schema fixture: %v", err)
	}
	return form
}

// TicketForm builds the canonical native form used across tests: subject,
// description, a priority dropdown that gates a due date, and an optional
// checkbox-triggered detail field.
func TicketForm() pkgmodel.RequestForm {
	fields := []pkgmodel.Field{
		{ID: 1, Name: "request[subject]", Type: pkgmodel.FieldTypeSubject, Label: "Subject", Required: true, Value: pkgmodel.EmptyValue{}},
		{ID: 2, Name: "request[description]", Type: pkgmodel.FieldTypeDescription, Label: "Description", Required: true, Value: pkgmodel.EmptyValue{}},
		{
			ID: 3, Name: "request[priority]", Type: pkgmodel.FieldTypePriority, Label: "Priority",
			Value: pkgmodel.EmptyValue{},
			Options: []pkgmodel.Option{
				{Label: "Low", Value: "low"},
				{Label: "Urgent", Value: "urgent"},
				{Label: "Task", Value: pkgmodel.TaskSentinel},
			},
		},
		{ID: 4, Name: "request[escalate]", Type: pkgmodel.FieldTypeCheckbox, Label: "Escalate", Value: pkgmodel.BoolValue(false)},
		{ID: 5, Name: "request[escalation_reason]", Type: pkgmodel.FieldTypeText, Label: "Escalation reason", Value: pkgmodel.EmptyValue{}},
	}
	dueDate := pkgmodel.Field{
		ID: 6, Name: "request[due_date]", Type: pkgmodel.FieldTypeDueDate, Label: "Due date",
		Value: pkgmodel.EmptyValue{},
	}
	mimetype := pkgmodel.Field{
		Name: "request[description_mimetype]", Type: pkgmodel.FieldTypeHidden,
		Value: pkgmodel.EmptyValue{},
	}
	return pkgmodel.RequestForm{
		Fields: fields,
		Conditions: []pkgmodel.Condition{
			{
				Field:   "request[escalate]",
				Values:  []string{"on"},
				Effect:  pkgmodel.EffectShow,
				Targets: []pkgmodel.ConditionTarget{{Field: "request[escalation_reason]", Required: true}},
			},
		},
		Target: pkgmodel.SubmitTarget{
			Action:        "/hc/requests",
			Method:        "post",
			AcceptCharset: "UTF-8",
		},
		DueDateField:             &dueDate,
		DescriptionMimetypeField: &mimetype,
	}
}

// ServiceForm builds a form shaped like a service-catalog request: subject and
// description plus two custom fields that must survive into custom_fields.
func ServiceForm() pkgmodel.RequestForm {
	ticketForm := pkgmodel.Field{
		ID: 100, Name: "request[ticket_form_id]", Type: pkgmodel.FieldTypeTicketForm,
		Value:   pkgmodel.StringValue("360000001"),
		Options: []pkgmodel.Option{{Label: "IT request", Value: "360000001"}},
	}
	return pkgmodel.RequestForm{
		Fields: []pkgmodel.Field{
			{ID: 1, Name: "request[subject]", Type: pkgmodel.FieldTypeSubject, Label: "Subject", Value: pkgmodel.EmptyValue{}},
			{ID: 2, Name: "request[description]", Type: pkgmodel.FieldTypeDescription, Label: "Description", Value: pkgmodel.EmptyValue{}},
			{ID: 10, Name: "request[custom_fields][10]", Type: pkgmodel.FieldTypeText, Label: "Asset tag", Value: pkgmodel.EmptyValue{}},
			{ID: 11, Name: "request[custom_fields][11]", Type: pkgmodel.FieldTypeCheckbox, Label: "Remote", Value: pkgmodel.BoolValue(false)},
		},
		Target: pkgmodel.SubmitTarget{
			Action: "/api/v2/requests",
			Method: "post",
		},
		TicketFormField: &ticketForm,
	}
}
