package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-requestform/pkg/helpcenter"
	"github.com/goliatone/go-requestform/pkg/model"
)

// ServiceAPI is the slice of the help-center client the service-catalog
// variant needs: the acting user's own anti-forgery token and request
// creation.
type ServiceAPI interface {
	Me(ctx context.Context) (helpcenter.CurrentUser, error)
	CreateRequest(ctx context.Context, token string, payload helpcenter.RequestPayload) (int64, error)
}

// Navigator redirects the browsing context after a successful service submit.
type Navigator interface {
	Redirect(url string)
}

// NavigatorFunc adapts a function into a Navigator.
type NavigatorFunc func(url string)

// Redirect delegates to the underlying function.
func (fn NavigatorFunc) Redirect(url string) { fn(url) }

// ServiceOption customises a service pipeline.
type ServiceOption func(*ServicePipeline)

// WithServiceLogger overrides the default logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(p *ServicePipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// ServicePipeline submits a service-catalog item request: a JSON POST to the
// request-creation endpoint followed by a redirect to the created request's
// detail page. It shares the single-latch discipline of the native pipeline.
type ServicePipeline struct {
	instanceID uuid.UUID
	api        ServiceAPI
	nav        Navigator

	latch atomic.Bool

	sanitizer *bluemonday.Policy
	log       *slog.Logger
}

// NewService constructs a service-catalog pipeline.
func NewService(api ServiceAPI, nav Navigator, options ...ServiceOption) (*ServicePipeline, error) {
	if api == nil {
		return nil, errors.New("submit: service api is required")
	}
	if nav == nil {
		return nil, errors.New("submit: navigator is required")
	}
	p := &ServicePipeline{
		instanceID: uuid.New(),
		api:        api,
		nav:        nav,
		sanitizer:  bluemonday.UGCPolicy(),
		log:        slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p, nil
}

// BuildRequestPayload assembles the request-creation body for a catalog item:
// subject derived from the item name, body from its description, the target
// ticket form id, and the committed custom field values with subject and
// description fields excluded.
func BuildRequestPayload(item model.ServiceCatalogItem, fields []model.Field) helpcenter.RequestPayload {
	custom := make([]helpcenter.CustomField, 0, len(fields))
	for _, field := range fields {
		if field.Type == model.FieldTypeSubject || field.Type == model.FieldTypeDescription {
			continue
		}
		custom = append(custom, helpcenter.CustomField{
			ID:    field.ID,
			Value: model.ValueAny(field.Value),
		})
	}
	return helpcenter.RequestPayload{
		Subject:      "Request for: " + item.Name,
		Comment:      helpcenter.Comment{Body: item.Description},
		TicketFormID: item.FormID,
		CustomFields: custom,
	}
}

// Submit performs the service-catalog submission. Failures are logged and
// returned; no redirect occurs on error and the latch stays set.
func (p *ServicePipeline) Submit(ctx context.Context, item model.ServiceCatalogItem, fields []model.Field) error {
	if !p.latch.CompareAndSwap(false, true) {
		p.log.Debug("submit: duplicate service submit ignored",
			slog.String("instance", p.instanceID.String()))
		return nil
	}

	payload := BuildRequestPayload(item, fields)
	payload.Comment.Body = p.sanitizer.Sanitize(payload.Comment.Body)

	user, err := p.api.Me(ctx)
	if err != nil {
		p.log.Error("submit: current user fetch failed",
			slog.String("instance", p.instanceID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("submit: current user: %w", err)
	}

	id, err := p.api.CreateRequest(ctx, user.AuthenticityToken, payload)
	if err != nil {
		p.log.Error("submit: request creation failed",
			slog.String("instance", p.instanceID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("submit: create request: %w", err)
	}

	p.nav.Redirect(helpcenter.RequestPath(id))
	return nil
}
