// Package tui drives a form session from a terminal: each visible field is
// prompted in order, every answer flows through the form state controller,
// and visibility recomputes live so conditional fields appear the moment
// their trigger value matches.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-requestform/pkg/model"
	"github.com/goliatone/go-requestform/pkg/render"
	"github.com/goliatone/go-requestform/pkg/session"
)

// Option configures the filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver used by the filler.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(f *Filler) {
		if log != nil {
			f.log = log
		}
	}
}

// Filler walks a session's visible fields interactively.
type Filler struct {
	driver PromptDriver
	log    *slog.Logger
}

// New constructs a Filler with the survey-backed driver by default.
func New(options ...Option) *Filler {
	f := &Filler{
		driver: newSurveyDriver(),
		log:    slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Run fills the form interactively and, after a final confirmation, submits
// it. Declining the confirmation leaves the session untouched.
func (f *Filler) Run(ctx context.Context, sess *session.Session) error {
	if err := f.Fill(ctx, sess); err != nil {
		return err
	}
	if !sess.CanSubmit() {
		return f.driver.Info(ctx, "A ticket form must be selected before submitting.")
	}
	ok, err := f.driver.Confirm(ctx, ConfirmConfig{
		Message: "Submit request?",
		Default: true,
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return sess.Submit(ctx)
}

// Fill prompts for every currently visible field, recomputing visibility
// after each answer. Fields that surface mid-run (a trigger answer flipping
// a condition) are prompted in a follow-up pass; the run ends when a pass
// prompts nothing new.
func (f *Filler) Fill(ctx context.Context, sess *session.Session) error {
	prompted := make(map[string]struct{})
	for {
		progressed := false
		for _, field := range sess.Visible() {
			if _, done := prompted[field.Name]; done {
				continue
			}
			prompted[field.Name] = struct{}{}
			progressed = true

			value, err := f.prompt(ctx, field)
			if err != nil {
				if err == ErrUnpromptable {
					f.log.Debug("tui: skipping unpromptable field",
						slog.String("field", field.Name),
						slog.String("type", string(field.Type)))
					continue
				}
				return err
			}
			if err := sess.SetValue(field.Name, value); err != nil {
				return fmt.Errorf("tui: commit %q: %w", field.Name, err)
			}
		}
		if !progressed {
			return nil
		}
	}
}

func (f *Filler) prompt(ctx context.Context, field model.Field) (model.Value, error) {
	binding, err := render.Bind(field)
	if err != nil {
		return nil, err
	}

	message := field.Label
	if message == "" {
		message = field.Name
	}
	if field.Required {
		message += " *"
	}

	switch binding.Component {
	case render.ComponentInput:
		out, err := f.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   model.ValueString(field.Value),
			Help:      field.Description,
			Validator: validatorFor(field),
		})
		if err != nil {
			return nil, err
		}
		return model.StringValue(out), nil
	case render.ComponentTextArea, render.ComponentRichText:
		out, err := f.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: model.ValueString(field.Value),
			Help:    field.Description,
		})
		if err != nil {
			return nil, err
		}
		return model.StringValue(out), nil
	case render.ComponentDropdown, render.ComponentTagger:
		labels, values := optionLists(field.Options)
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: indexOf(values, model.ValueString(field.Value)),
			Help:         field.Description,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(values) {
			return model.EmptyValue{}, nil
		}
		return model.StringValue(values[idx]), nil
	case render.ComponentCheckbox:
		current, _ := field.Value.(model.BoolValue)
		out, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Default: bool(current),
			Help:    field.Description,
		})
		if err != nil {
			return nil, err
		}
		return model.BoolValue(out), nil
	case render.ComponentDatePicker:
		out, err := f.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   model.ValueString(field.Value),
			Help:      "YYYY-MM-DD",
			Validator: dateValidator,
		})
		if err != nil {
			return nil, err
		}
		return model.StringValue(out), nil
	case render.ComponentMultiSelect:
		labels, values := optionLists(field.Options)
		current, _ := field.Value.(model.ListValue)
		indices, err := f.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  labels,
			Defaults: indicesOf(values, []string(current)),
			Help:     field.Description,
		})
		if err != nil {
			return nil, err
		}
		picked := make([]string, 0, len(indices))
		for _, i := range indices {
			if i >= 0 && i < len(values) {
				picked = append(picked, values[i])
			}
		}
		if len(picked) == 0 {
			return model.EmptyValue{}, nil
		}
		return model.ListValue(picked), nil
	case render.ComponentCCField:
		out, err := f.driver.Input(ctx, InputConfig{
			Message: message,
			Default: model.ValueString(field.Value),
			Help:    "comma-separated addresses",
		})
		if err != nil {
			return nil, err
		}
		entries := splitList(out)
		if len(entries) == 0 {
			return model.EmptyValue{}, nil
		}
		return model.ListValue(entries), nil
	case render.ComponentAttachments, render.ComponentCreditCard, render.ComponentHidden:
		return nil, ErrUnpromptable
	default:
		return nil, ErrUnpromptable
	}
}

func validatorFor(field model.Field) func(string) error {
	switch field.Type {
	case model.FieldTypeInteger:
		return func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				return nil
			}
			if _, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err != nil {
				return fmt.Errorf("not an integer: %q", raw)
			}
			return nil
		}
	case model.FieldTypeDecimal:
		return func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				return nil
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
				return fmt.Errorf("not a number: %q", raw)
			}
			return nil
		}
	default:
		return nil
	}
}

func dateValidator(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", trimmed); err != nil {
		return fmt.Errorf("not a date (YYYY-MM-DD): %q", raw)
	}
	return nil
}

func optionLists(options []model.Option) ([]string, []string) {
	labels := make([]string, 0, len(options))
	values := make([]string, 0, len(options))
	for _, option := range options {
		label := option.Label
		if label == "" {
			label = option.Value
		}
		labels = append(labels, label)
		values = append(values, option.Value)
	}
	return labels, values
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
