package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-requestform/pkg/helpcenter"
)

// RecordedRequest captures one request-creation POST as the fake server saw
// it: the anti-forgery header and the decoded payload.
type RecordedRequest struct {
	CSRFToken string
	Payload   helpcenter.RequestPayload
}

// HelpCenter is an in-process fake of the help-center endpoints the
// submission pipelines talk to. All fields are safe to read after the calls
// under test return.
type HelpCenter struct {
	Server *httptest.Server

	mu           sync.Mutex
	csrfToken    string
	tokenFetches int
	user         helpcenter.CurrentUser
	items        map[int64]helpcenter.CatalogItem
	requests     []RecordedRequest
	nextID       int64

	failCSRF    bool
	failRequest bool
}

// NewHelpCenter starts a fake help-center server and registers its shutdown
// with the test's cleanup.
func NewHelpCenter(t *testing.T) *HelpCenter {
	t.Helper()

	hc := &HelpCenter{
		csrfToken: "token-1",
		user: helpcenter.CurrentUser{
			ID:                42,
			Email:             "agent@example.test",
			AuthenticityToken: "user-token-1",
		},
		items:  make(map[int64]helpcenter.CatalogItem),
		nextID: 9001,
	}

	r := chi.NewRouter()
	r.Get("/hc/api/internal/csrf_token.json", hc.handleCSRFToken)
	r.Get("/api/v2/users/me.json", hc.handleMe)
	r.Get("/api/v2/help_center/service_catalog/items/{itemID}", hc.handleCatalogItem)
	r.Post("/api/v2/requests", hc.handleCreateRequest)

	hc.Server = httptest.NewServer(r)
	t.Cleanup(hc.Server.Close)
	return hc
}

// Client returns a help-center client pointed at the fake server.
func (hc *HelpCenter) Client(t *testing.T) *helpcenter.Client {
	t.Helper()
	client, err := helpcenter.New(hc.Server.URL)
	if err != nil {
		t.Fatalf("new helpcenter client: %v", err)
	}
	return client
}

// SetCSRFToken replaces the token returned by the token endpoint.
func (hc *HelpCenter) SetCSRFToken(token string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.csrfToken = token
}

// SetUser replaces the acting user.
func (hc *HelpCenter) SetUser(user helpcenter.CurrentUser) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.user = user
}

// AddCatalogItem registers a service catalog item.
func (hc *HelpCenter) AddCatalogItem(item helpcenter.CatalogItem) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.items[item.ID] = item
}

// FailCSRF makes the token endpoint answer 500.
func (hc *HelpCenter) FailCSRF(fail bool) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.failCSRF = fail
}

// FailRequests makes request creation answer 422.
func (hc *HelpCenter) FailRequests(fail bool) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.failRequest = fail
}

// TokenFetches reports how many times the token endpoint was hit.
func (hc *HelpCenter) TokenFetches() int {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return hc.tokenFetches
}

// Requests returns a copy of all recorded request-creation calls.
func (hc *HelpCenter) Requests() []RecordedRequest {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	out := make([]RecordedRequest, len(hc.requests))
	copy(out, hc.requests)
	return out
}

func (hc *HelpCenter) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	hc.mu.Lock()
	hc.tokenFetches++
	fail := hc.failCSRF
	token := hc.csrfToken
	hc.mu.Unlock()

	if fail {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"current_session": map[string]any{"csrf_token": token},
	})
}

func (hc *HelpCenter) handleMe(w http.ResponseWriter, r *http.Request) {
	hc.mu.Lock()
	user := hc.user
	hc.mu.Unlock()

	writeJSON(w, map[string]any{"user": user})
}

func (hc *HelpCenter) handleCatalogItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		http.Error(w, "bad item id", http.StatusBadRequest)
		return
	}

	hc.mu.Lock()
	item, ok := hc.items[id]
	hc.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"service_catalog_item": item})
}

func (hc *HelpCenter) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var wire struct {
		Request helpcenter.RequestPayload `json:"request"`
	}
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	hc.mu.Lock()
	fail := hc.failRequest
	if !fail {
		hc.requests = append(hc.requests, RecordedRequest{
			CSRFToken: r.Header.Get("X-CSRF-Token"),
			Payload:   wire.Request,
		})
		hc.nextID++
	}
	id := hc.nextID
	hc.mu.Unlock()

	if fail {
		http.Error(w, "unprocessable", http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"request": map[string]any{"id": id},
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
