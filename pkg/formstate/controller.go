// Package formstate owns the single source of truth for a form instance's
// field values. The controller is the only writer; rendering and visibility
// receive derived copies, never a mutable reference. Execution is cooperative
// and single-threaded, matching the UI event loop the form runs on, so the
// controller carries no locks.
package formstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-requestform/pkg/model"
)

// ErrFieldNotFound signals a value access for a name absent from the field
// set. A set on an unknown name is a schema/state mismatch, not user error.
var ErrFieldNotFound = errors.New("formstate: field not found")

// Change is one value-change event from the presentation layer, keyed by field
// name. Widgets emit these on a single channel instead of threading callbacks.
type Change struct {
	Field string
	Value model.Value
}

// Option customises the controller.
type Option func(*Controller)

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithOrganizationField attaches the conditionally rendered organization field
// as an independently settable sub-state. Pass nil when the form has none.
func WithOrganizationField(field *model.Field) Option {
	return func(c *Controller) {
		if field != nil {
			clone := field.Clone()
			c.organization = &clone
		}
	}
}

// WithDueDateField attaches the due-date field sub-state. Pass nil when the
// form has none.
func WithDueDateField(field *model.Field) Option {
	return func(c *Controller) {
		if field != nil {
			clone := field.Clone()
			c.dueDate = &clone
		}
	}
}

// WithOnUpdate registers a hook invoked after every applied change. Sessions
// use it to recompute visibility synchronously on each update.
func WithOnUpdate(fn func(Change)) Option {
	return func(c *Controller) {
		c.onUpdate = fn
	}
}

// Controller tracks the current value of every field, independent of
// visibility. It never filters: callers apply the visibility engine at render
// time.
type Controller struct {
	fields       []model.Field
	index        map[string]int
	organization *model.Field
	dueDate      *model.Field
	onUpdate     func(Change)
	log          *slog.Logger
}

// New builds a controller from the initial field state, normally the prefill
// merge output. The input is deep-copied; later mutations of the caller's
// slice do not leak in.
func New(fields []model.Field, options ...Option) *Controller {
	c := &Controller{
		fields: make([]model.Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
		log:    slog.Default(),
	}
	for _, f := range fields {
		c.index[f.Name] = len(c.fields)
		c.fields = append(c.fields, f.Clone())
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Value returns the current value for name, satisfying visibility.State.
// Sub-state fields (organization, due date) resolve here as well so the
// visibility engine can read them.
func (c *Controller) Value(name string) (model.Value, bool) {
	if i, ok := c.index[name]; ok {
		return model.CloneValue(c.fields[i].Value), true
	}
	if c.organization != nil && c.organization.Name == name {
		return model.CloneValue(c.organization.Value), true
	}
	if c.dueDate != nil && c.dueDate.Name == name {
		return model.CloneValue(c.dueDate.Value), true
	}
	return nil, false
}

// Get returns the current value or ErrFieldNotFound.
func (c *Controller) Get(name string) (model.Value, error) {
	v, ok := c.Value(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	return v, nil
}

// Set replaces the value for the named field, preserving every other field
// unchanged. The replacement must match the field type's value shape; a
// mismatch is a defect and is rejected.
func (c *Controller) Set(name string, value model.Value) error {
	i, ok := c.index[name]
	if !ok {
		if c.organization != nil && c.organization.Name == name {
			return c.setSub(c.organization, value)
		}
		if c.dueDate != nil && c.dueDate.Name == name {
			return c.setSub(c.dueDate, value)
		}
		return fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	if err := model.CheckShape(c.fields[i].Type, value); err != nil {
		return fmt.Errorf("formstate: set %q: %w", name, err)
	}
	replaced := c.fields[i].Clone()
	replaced.Value = model.CloneValue(value)
	c.fields[i] = replaced
	c.notify(Change{Field: name, Value: value})
	return nil
}

func (c *Controller) setSub(field *model.Field, value model.Value) error {
	if err := model.CheckShape(field.Type, value); err != nil {
		return fmt.Errorf("formstate: set %q: %w", field.Name, err)
	}
	field.Value = model.CloneValue(value)
	c.notify(Change{Field: field.Name, Value: value})
	return nil
}

// SetOrganization updates the organization sub-state. Forms without an
// organization field treat this as a no-op; the case is logged so deployments
// can audit whether the omission is intentional.
func (c *Controller) SetOrganization(value string) {
	if c.organization == nil {
		c.log.Debug("formstate: organization change ignored, form has no organization field")
		return
	}
	_ = c.setSub(c.organization, model.StringValue(value))
}

// SetDueDate updates the due-date sub-state, with the same logged no-op
// behavior as SetOrganization for forms lacking the field.
func (c *Controller) SetDueDate(value string) {
	if c.dueDate == nil {
		c.log.Debug("formstate: due date change ignored, form has no due date field")
		return
	}
	_ = c.setSub(c.dueDate, model.StringValue(value))
}

// OrganizationField returns a copy of the organization sub-state, if any.
func (c *Controller) OrganizationField() (model.Field, bool) {
	if c.organization == nil {
		return model.Field{}, false
	}
	return c.organization.Clone(), true
}

// DueDateField returns a copy of the due-date sub-state, if any.
func (c *Controller) DueDateField() (model.Field, bool) {
	if c.dueDate == nil {
		return model.Field{}, false
	}
	return c.dueDate.Clone(), true
}

// Fields returns a deep copy of the full field state in schema order,
// regardless of visibility.
func (c *Controller) Fields() []model.Field {
	out := make([]model.Field, 0, len(c.fields))
	for _, f := range c.fields {
		out = append(out, f.Clone())
	}
	return out
}

// Apply dispatches one change event to the matching field record.
func (c *Controller) Apply(change Change) error {
	return c.Set(change.Field, change.Value)
}

// Run consumes change events until the channel closes or the context ends,
// applying them in arrival order. Unknown-field events signal a schema/state
// mismatch and are logged rather than dropped silently.
func (c *Controller) Run(ctx context.Context, changes <-chan Change) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if err := c.Apply(change); err != nil {
				c.log.Error("formstate: change rejected",
					slog.String("field", change.Field),
					slog.String("error", err.Error()))
			}
		}
	}
}

func (c *Controller) notify(change Change) {
	if c.onUpdate != nil {
		c.onUpdate(change)
	}
}
