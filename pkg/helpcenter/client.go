// Package helpcenter is a typed client for the help-center endpoints the
// submission pipeline depends on: the rotating anti-forgery token, the acting
// user, service catalog items and request creation.
package helpcenter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	csrfTokenPath   = "/hc/api/internal/csrf_token.json"
	currentUserPath = "/api/v2/users/me.json"
	catalogItemPath = "/api/v2/help_center/service_catalog/items/"
	requestsPath    = "/api/v2/requests"
)

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds each request. Zero disables the bound, matching the
// original behavior where an unresolved call stalls its flow.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client talks to one help-center deployment.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New validates the base URL and constructs a client.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("helpcenter: base url is required")
	}
	c := &Client{
		baseURL:    trimmed,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// CurrentUser is the subset of the acting user the pipeline needs.
type CurrentUser struct {
	ID                int64  `json:"id"`
	Email             string `json:"email"`
	AuthenticityToken string `json:"authenticity_token"`
}

// RequestPayload is the JSON body for request creation.
type RequestPayload struct {
	Subject      string        `json:"subject"`
	Comment      Comment       `json:"comment"`
	TicketFormID int64         `json:"ticket_form_id"`
	CustomFields []CustomField `json:"custom_fields"`
}

// Comment carries the request body text.
type Comment struct {
	Body string `json:"body"`
}

// CustomField is one id/value pair submitted with a request.
type CustomField struct {
	ID    int64 `json:"id"`
	Value any   `json:"value"`
}

// CSRFToken fetches the rotating anti-forgery token for the current session.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	var wire struct {
		CurrentSession struct {
			CSRFToken string `json:"csrf_token"`
		} `json:"current_session"`
	}
	if err := c.getJSON(ctx, csrfTokenPath, &wire); err != nil {
		return "", fmt.Errorf("helpcenter: csrf token: %w", err)
	}
	if wire.CurrentSession.CSRFToken == "" {
		return "", errors.New("helpcenter: csrf token: empty token in response")
	}
	return wire.CurrentSession.CSRFToken, nil
}

// Me fetches the acting user, including their own authenticity token used by
// the service-catalog submit variant.
func (c *Client) Me(ctx context.Context) (CurrentUser, error) {
	var wire struct {
		User CurrentUser `json:"user"`
	}
	if err := c.getJSON(ctx, currentUserPath, &wire); err != nil {
		return CurrentUser{}, fmt.Errorf("helpcenter: current user: %w", err)
	}
	return wire.User, nil
}

// ServiceCatalogItem fetches one catalog item by id.
func (c *Client) ServiceCatalogItem(ctx context.Context, id int64) (CatalogItem, error) {
	var wire struct {
		ServiceCatalogItem CatalogItem `json:"service_catalog_item"`
	}
	path := catalogItemPath + strconv.FormatInt(id, 10)
	if err := c.getJSON(ctx, path, &wire); err != nil {
		return CatalogItem{}, fmt.Errorf("helpcenter: service catalog item %d: %w", id, err)
	}
	return wire.ServiceCatalogItem, nil
}

// CatalogItem mirrors the service catalog item wire shape.
type CatalogItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	FormID      int64  `json:"form_id"`
}

// CreateRequest posts a new request with the provided anti-forgery token and
// returns the created request id.
func (c *Client) CreateRequest(ctx context.Context, token string, payload RequestPayload) (int64, error) {
	body, err := json.Marshal(struct {
		Request RequestPayload `json:"request"`
	}{Request: payload})
	if err != nil {
		return 0, fmt.Errorf("helpcenter: create request: encode: %w", err)
	}

	reqCtx, cancel := c.bound(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+requestsPath, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("helpcenter: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("helpcenter: create request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.New("helpcenter: create request: unexpected status " + resp.Status)
	}

	var wire struct {
		Request struct {
			ID int64 `json:"id"`
		} `json:"request"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return 0, fmt.Errorf("helpcenter: create request: decode: %w", err)
	}
	return wire.Request.ID, nil
}

// RequestPath returns the detail page path for a created request, the redirect
// destination after a successful service-catalog submit.
func RequestPath(id int64) string {
	return "/hc/requests/" + strconv.FormatInt(id, 10)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	reqCtx, cancel := c.bound(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("unexpected status " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return ctx, func() {}
}
