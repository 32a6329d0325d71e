// Package submit implements the submission pipeline: a one-way state machine
// that intercepts the submit action, fetches the rotating anti-forgery token
// exactly once, appends it as a hidden field and hands off to the native
// submitter. The duplicate-submission defense is a latch, not a disabled
// control: the submit affordance stays enabled for accessibility, so the latch
// is set synchronously before the first suspension point to close the race
// where two rapid submit events both observe the idle state.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-requestform/pkg/model"
	"github.com/goliatone/go-requestform/pkg/render"
)

// State observes where a pipeline currently is. Transitions are one-way;
// a consumed pipeline never returns to idle.
type State int32

const (
	StateIdle State = iota
	StateTokenFetching
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTokenFetching:
		return "token-fetching"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ErrTokenFetch wraps a failed anti-forgery token fetch. There is no retry:
// the latch stays set and the form instance is consumed.
var ErrTokenFetch = errors.New("submit: token fetch failed")

// TokenSource fetches the rotating anti-forgery token. helpcenter.Client
// satisfies this.
type TokenSource interface {
	CSRFToken(ctx context.Context) (string, error)
}

// FormValue is one serialized name/value pair of a native form post.
type FormValue struct {
	Name  string
	Value string
}

// Submitter performs the underlying native form submission, a full
// navigation/post rather than a fetch.
type Submitter interface {
	Submit(ctx context.Context, target model.SubmitTarget, values []FormValue) error
}

// Option customises a pipeline.
type Option func(*Pipeline)

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithRichText marks the description body as rich text. The description
// mimetype hidden field flips to text/html and the body is sanitized before
// serialization.
func WithRichText(enabled bool) Option {
	return func(p *Pipeline) {
		p.richText = enabled
	}
}

// WithHiddenFields merges extra hidden fields (for example the schema's inline
// attachment inputs) into the submission.
func WithHiddenFields(fields ...render.HiddenField) Option {
	return func(p *Pipeline) {
		p.hidden = render.MergeHiddenFields(p.hidden, fields...)
	}
}

// Pipeline guards and performs the native submission for one form instance.
// The latch is scoped to this instance and is never reset; once a submit event
// advances past idle the instance is considered consumed.
type Pipeline struct {
	instanceID uuid.UUID
	target     model.SubmitTarget
	tokens     TokenSource
	submitter  Submitter

	mimetypeField string
	richText      bool
	hidden        map[string]string

	latch atomic.Bool
	state atomic.Int32

	sanitizer *bluemonday.Policy
	log       *slog.Logger
}

// New constructs a pipeline for one form instance.
func New(form model.RequestForm, tokens TokenSource, submitter Submitter, options ...Option) (*Pipeline, error) {
	if tokens == nil {
		return nil, errors.New("submit: token source is required")
	}
	if submitter == nil {
		return nil, errors.New("submit: submitter is required")
	}

	p := &Pipeline{
		instanceID: uuid.New(),
		target:     form.Target,
		tokens:     tokens,
		submitter:  submitter,
		sanitizer:  bluemonday.UGCPolicy(),
		log:        slog.Default(),
	}
	if form.DescriptionMimetypeField != nil {
		p.mimetypeField = form.DescriptionMimetypeField.Name
	}
	for _, f := range form.InlineAttachmentFields {
		p.hidden = render.MergeHiddenFields(p.hidden, render.Hidden(f.Name, model.ValueString(f.Value)))
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p, nil
}

// InstanceID identifies this form instance in log records.
func (p *Pipeline) InstanceID() uuid.UUID {
	return p.instanceID
}

// State reports the pipeline's current state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Submit runs the pipeline against the committed field state. The first call
// wins; subsequent calls while not idle are silently ignored, mirroring the
// enabled-but-guarded submit affordance. A failed token fetch leaves the
// instance consumed with no retry.
func (p *Pipeline) Submit(ctx context.Context, fields []model.Field) error {
	// set before any suspension point; two rapid submit events must not both
	// observe idle
	if !p.latch.CompareAndSwap(false, true) {
		p.log.Debug("submit: duplicate submit ignored",
			slog.String("instance", p.instanceID.String()),
			slog.String("state", p.State().String()))
		return nil
	}

	p.state.Store(int32(StateTokenFetching))
	token, err := p.tokens.CSRFToken(ctx)
	if err != nil {
		p.log.Error("submit: token fetch failed, form instance is consumed",
			slog.String("instance", p.instanceID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrTokenFetch, err)
	}

	values := p.serialize(fields)
	hidden := render.MergeHiddenFields(p.hidden, render.AuthenticityToken(token))
	if p.mimetypeField != "" {
		hidden = render.MergeHiddenFields(hidden, render.DescriptionMimetype(p.mimetypeField, p.richText))
	}
	for _, hf := range render.SortedHiddenFields(hidden) {
		values = append(values, FormValue{Name: hf.Name, Value: hf.Value})
	}

	p.state.Store(int32(StateSubmitting))
	if err := p.submitter.Submit(ctx, p.target, values); err != nil {
		p.log.Error("submit: native submission failed",
			slog.String("instance", p.instanceID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("submit: native submission: %w", err)
	}
	return nil
}

// serialize flattens the committed field state into native post pairs.
// Attachments carry no postable value of their own (the upload widget manages
// its tokens through the inline hidden fields) and are skipped.
func (p *Pipeline) serialize(fields []model.Field) []FormValue {
	values := make([]FormValue, 0, len(fields))
	for _, field := range fields {
		if field.Type == model.FieldTypeAttachments {
			continue
		}
		raw := model.ValueString(field.Value)
		if field.Type == model.FieldTypeDescription && p.richText {
			raw = p.sanitizer.Sanitize(raw)
		}
		values = append(values, FormValue{Name: field.Name, Value: raw})
	}
	return values
}
