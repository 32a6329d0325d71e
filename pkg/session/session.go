// Package session wires one form instance end to end: schema-declared fields
// flow through the prefill merge into the form state controller, the
// visibility rule set filters what rendering currently exposes, and the
// submission pipeline consumes the committed state at submit time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-requestform/pkg/formstate"
	"github.com/goliatone/go-requestform/pkg/model"
	"github.com/goliatone/go-requestform/pkg/prefill"
	"github.com/goliatone/go-requestform/pkg/render"
	"github.com/goliatone/go-requestform/pkg/submit"
	"github.com/goliatone/go-requestform/pkg/visibility"
)

// ErrNoPipeline signals a submit attempt on a session constructed without a
// token source and submitter.
var ErrNoPipeline = errors.New("session: no submission pipeline configured")

// Option customises a session.
type Option func(*config)

type config struct {
	overrides prefill.Overrides
	tokens    submit.TokenSource
	submitter submit.Submitter
	api       submit.ServiceAPI
	nav       submit.Navigator
	richText  bool
	log       *slog.Logger
}

// WithOverrides supplies the externally sourced prefill values.
func WithOverrides(overrides prefill.Overrides) Option {
	return func(c *config) {
		c.overrides = overrides
	}
}

// WithSubmission wires the native submission pipeline dependencies.
func WithSubmission(tokens submit.TokenSource, submitter submit.Submitter) Option {
	return func(c *config) {
		c.tokens = tokens
		c.submitter = submitter
	}
}

// WithServiceSubmission wires the service-catalog submission variant.
func WithServiceSubmission(api submit.ServiceAPI, nav submit.Navigator) Option {
	return func(c *config) {
		c.api = api
		c.nav = nav
	}
}

// WithRichText marks the description field as rich text for this deployment.
func WithRichText(enabled bool) Option {
	return func(c *config) {
		c.richText = enabled
	}
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// Session owns one mounted form instance. It is created once per mount and
// discarded with it; the submission latch inside the pipeline shares that
// lifetime and is never shared across instances.
type Session struct {
	form       model.RequestForm
	rules      *visibility.RuleSet
	controller *formstate.Controller
	pipeline   *submit.Pipeline
	service    *submit.ServicePipeline
	errs       render.ErrorMapping
	richText   bool
	log        *slog.Logger
}

// New validates the form, merges prefill overrides and assembles the runtime
// pieces. Schema errors (unknown condition references, cycles, shape
// mismatches) reject the form here, before anything renders.
func New(form model.RequestForm, options ...Option) (*Session, error) {
	cfg := config{log: slog.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	for _, f := range form.Fields {
		if err := model.CheckShape(f.Type, f.Value); err != nil {
			return nil, fmt.Errorf("session: field %q: %w", f.Name, err)
		}
	}

	rules, err := visibility.Compile(form)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	merged := prefill.Merge(form, cfg.overrides)

	controller := formstate.New(merged.Fields,
		formstate.WithLogger(cfg.log),
		formstate.WithOrganizationField(merged.Organization),
		formstate.WithDueDateField(merged.DueDate),
	)

	s := &Session{
		form:       form,
		rules:      rules,
		controller: controller,
		errs:       render.MapErrorPayload(form, nil),
		richText:   cfg.richText,
		log:        cfg.log,
	}

	if cfg.tokens != nil && cfg.submitter != nil {
		// prefilled requester email, cc list and the parent-request pointer
		// post alongside the visible fields
		var carried []render.HiddenField
		for _, f := range []*model.Field{form.ParentIDField, merged.Email, merged.CC} {
			if f != nil && !model.ValueEmpty(f.Value) {
				carried = append(carried, render.Hidden(f.Name, model.ValueString(f.Value)))
			}
		}
		pipeline, err := submit.New(form, cfg.tokens, cfg.submitter,
			submit.WithLogger(cfg.log),
			submit.WithRichText(cfg.richText),
			submit.WithHiddenFields(carried...),
		)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		s.pipeline = pipeline
	}
	if cfg.api != nil && cfg.nav != nil {
		service, err := submit.NewService(cfg.api, cfg.nav,
			submit.WithServiceLogger(cfg.log))
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		s.service = service
	}

	return s, nil
}

// Controller exposes the form state controller for change dispatch.
func (s *Session) Controller() *formstate.Controller {
	return s.controller
}

// Form returns the parsed request form this session was mounted from.
func (s *Session) Form() model.RequestForm {
	return s.form
}

// Visible recomputes the ordered visible field subset from the current state.
func (s *Session) Visible() []model.Field {
	return s.rules.Visible(s.controller)
}

// Bindings resolves the presentation bindings for the currently visible
// fields.
func (s *Session) Bindings() ([]render.Binding, error) {
	return render.BindAll(s.Visible())
}

// SetValue dispatches one value change to the controller.
func (s *Session) SetValue(name string, value model.Value) error {
	return s.controller.Set(name, value)
}

// CanSubmit reports whether the submit affordance should act: the ticket-form
// selector either offers no choice or has a committed value.
func (s *Session) CanSubmit() bool {
	tf := s.form.TicketFormField
	if tf == nil || len(tf.Options) == 0 {
		return true
	}
	return !model.ValueEmpty(tf.Value)
}

// committedFields assembles the state a native post serializes: the schema
// fields plus the organization and due-date sub-states, which render as inputs
// inside the form and post with everything else. The due date only rides along
// while its gate keeps it rendered; a value committed before the gate flipped
// away stays out of the post, the same as a removed input.
func (s *Session) committedFields() []model.Field {
	fields := s.controller.Fields()
	if org, ok := s.controller.OrganizationField(); ok && !model.ValueEmpty(org.Value) {
		fields = append(fields, org)
	}
	if due, ok := s.controller.DueDateField(); ok && !model.ValueEmpty(due.Value) && s.fieldVisible(due.Name) {
		fields = append(fields, due)
	}
	return fields
}

func (s *Session) fieldVisible(name string) bool {
	for _, f := range s.Visible() {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Submit reads the committed form state once and runs the native submission
// pipeline. Failures are also recorded as form-level error text so rendering
// can surface them inline.
func (s *Session) Submit(ctx context.Context) error {
	if s.pipeline == nil {
		return ErrNoPipeline
	}
	if err := s.pipeline.Submit(ctx, s.committedFields()); err != nil {
		s.errs.Form = render.MergeFormErrors(s.errs.Form, err.Error())
		return err
	}
	return nil
}

// SubmitServiceItem runs the service-catalog variant against the committed
// state.
func (s *Session) SubmitServiceItem(ctx context.Context, item model.ServiceCatalogItem) error {
	if s.service == nil {
		return ErrNoPipeline
	}
	if err := s.service.Submit(ctx, item, s.controller.Fields()); err != nil {
		s.errs.Form = render.MergeFormErrors(s.errs.Form, err.Error())
		return err
	}
	return nil
}

// SubmitState reports the native pipeline's current state.
func (s *Session) SubmitState() submit.State {
	if s.pipeline == nil {
		return submit.StateIdle
	}
	return s.pipeline.State()
}

// Errors returns the current error mapping: schema-declared per-field and
// top-level messages plus any recorded submission failures.
func (s *Session) Errors() render.ErrorMapping {
	return s.errs
}

// ApplyServerErrors folds a server validation payload into the session's
// error mapping for the next render.
func (s *Session) ApplyServerErrors(payload map[string][]string) {
	mapping := render.MapErrorPayload(s.form, payload)
	mapping.Form = render.MergeFormErrors(s.errs.Form, mapping.Form...)
	s.errs = mapping
}
