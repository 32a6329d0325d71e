package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-requestform/pkg/model"
	"github.com/goliatone/go-requestform/pkg/prefill"
	"github.com/goliatone/go-requestform/pkg/render"
	"github.com/goliatone/go-requestform/pkg/session"
	"github.com/goliatone/go-requestform/pkg/submit"
	"github.com/goliatone/go-requestform/pkg/testsupport"
)

type captureSubmitter struct {
	mu      sync.Mutex
	submits int
	values  []submit.FormValue
}

func (c *captureSubmitter) Submit(ctx context.Context, target model.SubmitTarget, values []submit.FormValue) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submits++
	c.values = append([]submit.FormValue(nil), values...)
	return nil
}

func (c *captureSubmitter) value(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

func visibleNames(fields []model.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestSessionRejectsBrokenConditionGraph(t *testing.T) {
	form := testsupport.TicketForm()
	form.Conditions = append(form.Conditions, model.Condition{
		Field:   "request[escalation_reason]",
		Values:  []string{"x"},
		Effect:  model.EffectShow,
		Targets: []model.ConditionTarget{{Field: "request[escalate]"}},
	})
	if _, err := session.New(form); err == nil {
		t.Fatalf("cyclic condition graph must reject the mount")
	}
}

func TestSessionRejectsShapeViolation(t *testing.T) {
	form := testsupport.TicketForm()
	form.Fields[3].Value = model.StringValue("on") // checkbox with string payload
	if _, err := session.New(form); !errors.Is(err, model.ErrValueShape) {
		t.Fatalf("expected ErrValueShape, got %v", err)
	}
}

func TestVisibilityRecomputesOnValueChange(t *testing.T) {
	sess, err := session.New(testsupport.TicketForm())
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	if contains(visibleNames(sess.Visible()), "request[escalation_reason]") {
		t.Fatalf("conditional field must start hidden")
	}

	if err := sess.SetValue("request[escalate]", model.BoolValue(true)); err != nil {
		t.Fatalf("set: %v", err)
	}
	names := visibleNames(sess.Visible())
	if !contains(names, "request[escalation_reason]") {
		t.Fatalf("conditional field must appear after trigger flip: %v", names)
	}

	if err := sess.SetValue("request[escalate]", model.BoolValue(false)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if contains(visibleNames(sess.Visible()), "request[escalation_reason]") {
		t.Fatalf("conditional field must hide again when trigger unflips")
	}
}

func TestDueDateFollowsTaskSelection(t *testing.T) {
	sess, err := session.New(testsupport.TicketForm())
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	if err := sess.SetValue("request[priority]", model.StringValue(model.TaskSentinel)); err != nil {
		t.Fatalf("set: %v", err)
	}
	names := visibleNames(sess.Visible())
	idxPriority, idxDue := -1, -1
	for i, n := range names {
		switch n {
		case "request[priority]":
			idxPriority = i
		case "request[due_date]":
			idxDue = i
		}
	}
	if idxDue == -1 {
		t.Fatalf("due date missing after task selection: %v", names)
	}
	if idxDue != idxPriority+1 {
		t.Fatalf("due date must directly follow its gate: %v", names)
	}

	if err := sess.SetValue("request[priority]", model.StringValue("low")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if contains(visibleNames(sess.Visible()), "request[due_date]") {
		t.Fatalf("due date must disappear for non-task values")
	}
}

func TestPrefillOverridesFlowIntoSubState(t *testing.T) {
	form := testsupport.TicketForm()
	sess, err := session.New(form, session.WithOverrides(prefill.Overrides{DueDate: "2026-09-15"}))
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	field, ok := sess.Controller().DueDateField()
	if !ok {
		t.Fatalf("due date sub-state missing")
	}
	if field.Value != model.StringValue("2026-09-15") {
		t.Fatalf("override lost: %#v", field.Value)
	}
}

func TestNativeSubmitEndToEnd(t *testing.T) {
	hc := testsupport.NewHelpCenter(t)
	hc.SetCSRFToken("tok-xyz")
	submitter := &captureSubmitter{}

	sess, err := session.New(testsupport.TicketForm(),
		session.WithSubmission(hc.Client(t), submitter))
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	if err := sess.SetValue("request[subject]", model.StringValue("Printer broken")); err != nil {
		t.Fatalf("set subject: %v", err)
	}
	if err := sess.SetValue("request[description]", model.StringValue("It smokes.")); err != nil {
		t.Fatalf("set description: %v", err)
	}
	if !sess.CanSubmit() {
		t.Fatalf("form without ticket-form selector must always be submittable")
	}

	if err := sess.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got, ok := submitter.value(render.AuthenticityTokenName); !ok || got != "tok-xyz" {
		t.Fatalf("authenticity token missing from post: %q ok=%v", got, ok)
	}
	if got, _ := submitter.value("request[subject]"); got != "Printer broken" {
		t.Fatalf("subject value mismatch: %q", got)
	}
	if got, _ := submitter.value("request[description_mimetype]"); got != render.MimetypePlain {
		t.Fatalf("mimetype mismatch: %q", got)
	}
	if hc.TokenFetches() != 1 {
		t.Fatalf("token fetched %d times, want 1", hc.TokenFetches())
	}

	// a second submit on the same instance is latched out
	if err := sess.Submit(context.Background()); err != nil {
		t.Fatalf("duplicate submit must be ignored, got %v", err)
	}
	if hc.TokenFetches() != 1 || submitter.submits != 1 {
		t.Fatalf("duplicate submit leaked: fetches=%d submits=%d", hc.TokenFetches(), submitter.submits)
	}
	if sess.SubmitState() != submit.StateSubmitting {
		t.Fatalf("consumed instance state mismatch: %v", sess.SubmitState())
	}
}

func TestPrefilledEmailRidesAlongOnNativeSubmit(t *testing.T) {
	hc := testsupport.NewHelpCenter(t)
	submitter := &captureSubmitter{}

	form := testsupport.TicketForm()
	email := model.Field{Name: "request[anonymous_requester_email]", Type: model.FieldTypeText}
	form.EmailField = &email

	sess, err := session.New(form,
		session.WithOverrides(prefill.Overrides{Email: "b@y.com"}),
		session.WithSubmission(hc.Client(t), submitter))
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := sess.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got, ok := submitter.value("request[anonymous_requester_email]"); !ok || got != "b@y.com" {
		t.Fatalf("prefilled email missing from post: %q ok=%v", got, ok)
	}
}

func TestCommittedDueDateRidesAlongOnNativeSubmit(t *testing.T) {
	hc := testsupport.NewHelpCenter(t)
	submitter := &captureSubmitter{}

	sess, err := session.New(testsupport.TicketForm(),
		session.WithSubmission(hc.Client(t), submitter))
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	if err := sess.SetValue("request[priority]", model.StringValue(model.TaskSentinel)); err != nil {
		t.Fatalf("set priority: %v", err)
	}
	if err := sess.SetValue("request[due_date]", model.StringValue("2026-09-15")); err != nil {
		t.Fatalf("set due date: %v", err)
	}
	if !contains(visibleNames(sess.Visible()), "request[due_date]") {
		t.Fatalf("due date must render after task selection")
	}

	if err := sess.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got, ok := submitter.value("request[due_date]"); !ok || got != "2026-09-15" {
		t.Fatalf("committed due date missing from native post: %q ok=%v", got, ok)
	}
}

func TestDueDateStaysOutOfPostWhenGateFlipsAway(t *testing.T) {
	hc := testsupport.NewHelpCenter(t)
	submitter := &captureSubmitter{}

	sess, err := session.New(testsupport.TicketForm(),
		session.WithSubmission(hc.Client(t), submitter))
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	if err := sess.SetValue("request[priority]", model.StringValue(model.TaskSentinel)); err != nil {
		t.Fatalf("set priority: %v", err)
	}
	if err := sess.SetValue("request[due_date]", model.StringValue("2026-09-15")); err != nil {
		t.Fatalf("set due date: %v", err)
	}
	// flipping the gate away removes the due-date input; its stale value must
	// not post
	if err := sess.SetValue("request[priority]", model.StringValue("low")); err != nil {
		t.Fatalf("set priority: %v", err)
	}

	if err := sess.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got, ok := submitter.value("request[due_date]"); ok {
		t.Fatalf("stale due date leaked into native post: %q", got)
	}
}

func TestCommittedOrganizationRidesAlongOnNativeSubmit(t *testing.T) {
	hc := testsupport.NewHelpCenter(t)
	submitter := &captureSubmitter{}

	form := testsupport.TicketForm()
	org := model.Field{Name: "request[organization_id]", Type: model.FieldTypeOrganization}
	form.OrganizationField = &org

	sess, err := session.New(form,
		session.WithSubmission(hc.Client(t), submitter))
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	sess.Controller().SetOrganization("360012345")
	if err := sess.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got, ok := submitter.value("request[organization_id]"); !ok || got != "360012345" {
		t.Fatalf("committed organization missing from native post: %q ok=%v", got, ok)
	}
}

func TestNativeSubmitTokenFailureRecordsFormError(t *testing.T) {
	hc := testsupport.NewHelpCenter(t)
	hc.FailCSRF(true)
	submitter := &captureSubmitter{}

	sess, err := session.New(testsupport.TicketForm(),
		session.WithSubmission(hc.Client(t), submitter))
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	if err := sess.Submit(context.Background()); !errors.Is(err, submit.ErrTokenFetch) {
		t.Fatalf("expected ErrTokenFetch, got %v", err)
	}
	if submitter.submits != 0 {
		t.Fatalf("native submit must not run after token failure")
	}
	errs := sess.Errors()
	if len(errs.Form) == 0 {
		t.Fatalf("token failure must surface as form-level error text")
	}
}

func TestSubmitWithoutPipeline(t *testing.T) {
	sess, err := session.New(testsupport.TicketForm())
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := sess.Submit(context.Background()); !errors.Is(err, session.ErrNoPipeline) {
		t.Fatalf("expected ErrNoPipeline, got %v", err)
	}
}

func TestCanSubmitRequiresTicketFormSelection(t *testing.T) {
	form := testsupport.ServiceForm()
	form.TicketFormField.Value = model.EmptyValue{}
	sess, err := session.New(form)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if sess.CanSubmit() {
		t.Fatalf("unselected ticket form must block submission")
	}

	form.TicketFormField.Value = model.StringValue("360000001")
	sess, err = session.New(form)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if !sess.CanSubmit() {
		t.Fatalf("selected ticket form must allow submission")
	}
}

func TestServiceCatalogSubmitEndToEnd(t *testing.T) {
	hc := testsupport.NewHelpCenter(t)
	client := hc.Client(t)

	var redirected string
	sess, err := session.New(testsupport.ServiceForm(),
		session.WithServiceSubmission(client, submit.NavigatorFunc(func(url string) {
			redirected = url
		})))
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	if err := sess.SetValue("request[custom_fields][10]", model.StringValue("ASSET-9")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := sess.SetValue("request[custom_fields][11]", model.BoolValue(true)); err != nil {
		t.Fatalf("set: %v", err)
	}

	item := model.ServiceCatalogItem{ID: 55, Name: "New laptop", Description: "Standard issue.", FormID: 360000001}
	if err := sess.SubmitServiceItem(context.Background(), item); err != nil {
		t.Fatalf("service submit: %v", err)
	}

	recorded := hc.Requests()
	if len(recorded) != 1 {
		t.Fatalf("expected one recorded request, got %d", len(recorded))
	}
	payload := recorded[0].Payload
	if payload.Subject != "Request for: New laptop" {
		t.Fatalf("derived subject mismatch: %q", payload.Subject)
	}
	if payload.TicketFormID != 360000001 {
		t.Fatalf("form id mismatch: %d", payload.TicketFormID)
	}
	for _, cf := range payload.CustomFields {
		if cf.ID == 1 || cf.ID == 2 {
			t.Fatalf("subject/description leaked into custom fields: %+v", cf)
		}
	}
	if recorded[0].CSRFToken == "" {
		t.Fatalf("request must carry the user's authenticity token")
	}
	if !strings.HasPrefix(redirected, "/hc/requests/") {
		t.Fatalf("redirect mismatch: %q", redirected)
	}
}

func TestApplyServerErrors(t *testing.T) {
	sess, err := session.New(testsupport.TicketForm())
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	sess.ApplyServerErrors(map[string][]string{
		"request[subject]": {"Subject is too short."},
		"unknown[field]":   {"Top level problem."},
	})
	errs := sess.Errors()
	if got := errs.Fields["request[subject]"]; len(got) != 1 || got[0] != "Subject is too short." {
		t.Fatalf("field error mismatch: %v", got)
	}
	if !contains(errs.Form, "Top level problem.") {
		t.Fatalf("unknown-name message must land at form level: %v", errs.Form)
	}
}

func TestBindingsMatchVisibleFields(t *testing.T) {
	sess, err := session.New(testsupport.TicketForm())
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	bindings, err := sess.Bindings()
	if err != nil {
		t.Fatalf("bindings: %v", err)
	}
	visible := sess.Visible()
	if len(bindings) != len(visible) {
		t.Fatalf("binding count %d != visible count %d", len(bindings), len(visible))
	}
	for i, b := range bindings {
		if b.Field.Name != visible[i].Name {
			t.Fatalf("binding %d out of order: %q vs %q", i, b.Field.Name, visible[i].Name)
		}
	}
}
