package submit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-requestform/pkg/model"
)

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, target model.SubmitTarget, values []FormValue) error

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, target model.SubmitTarget, values []FormValue) error {
	return f(ctx, target, values)
}

// HTTPSubmitter performs the native form post over HTTP: the serialized
// fields are sent url-encoded to the target action, the way a browser submits
// a form element.
type HTTPSubmitter struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSubmitter builds a submitter posting against the given deployment.
func NewHTTPSubmitter(baseURL string, httpClient *http.Client) (*HTTPSubmitter, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("submit: base url is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPSubmitter{baseURL: trimmed, httpClient: httpClient}, nil
}

// Submit posts the values form-encoded to the target action.
func (s *HTTPSubmitter) Submit(ctx context.Context, target model.SubmitTarget, values []FormValue) error {
	form := url.Values{}
	for _, v := range values {
		form.Add(v.Name, v.Value)
	}

	method := strings.ToUpper(strings.TrimSpace(target.Method))
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+target.Action, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("submit: build request: %w", err)
	}
	contentType := "application/x-www-form-urlencoded"
	if target.AcceptCharset != "" {
		contentType += "; charset=" + target.AcceptCharset
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit: post form: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return errors.New("submit: post form: unexpected status " + resp.Status)
	}
	return nil
}
