// Package e2e provides end-to-end testing infrastructure for stock-viewer.
package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"stock-viewer/config"
	"stock-viewer/e2e/mocks"
	"stock-viewer/internal/api"
	"stock-viewer/internal/app"
	"stock-viewer/services"
)

// TestHarness runs the full router and app against a mock provider.
type TestHarness struct {
	t          *testing.T
	ctx        context.Context
	cancel     context.CancelFunc
	mockServer *mocks.MockServer
	breakers   *services.CircuitBreakerRegistry
	app        *app.App
	router     http.Handler
	config     *config.Config
}

// NewTestHarness creates a new test harness. Call Setup before use.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

	return &TestHarness{
		t:      t,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Setup initializes all test dependencies.
func (h *TestHarness) Setup() error {
	h.mockServer = mocks.NewMockServer()
	h.config = h.createTestConfig()

	h.breakers = services.NewCircuitBreakerRegistry(services.DefaultCircuitBreakerConfig)
	svc := services.NewAlphaVantageService(
		h.config.AlphaVantage.APIKey,
		h.config.AlphaVantage.BaseURL,
		time.Duration(h.config.Fetch.TimeoutSeconds)*time.Second,
	)
	svc.SetBreakerRegistry(h.breakers)

	h.app = app.New(h.config, svc)
	h.app.Startup(h.ctx)

	handler := api.NewHandler(h.app, h.config, h.breakers)
	h.router = api.NewRouter(handler, h.config)

	return nil
}

// Teardown cleans up all test resources.
func (h *TestHarness) Teardown() {
	if h.app != nil {
		h.app.Shutdown(context.Background())
	}
	if h.cancel != nil {
		h.cancel()
	}
	if h.mockServer != nil {
		h.mockServer.Close()
	}
}

// Context returns the test context.
func (h *TestHarness) Context() context.Context {
	return h.ctx
}

// MockServer returns the mock provider for configuring responses.
func (h *TestHarness) MockServer() *mocks.MockServer {
	return h.mockServer
}

// Breakers returns the circuit breaker registry used by the provider client.
func (h *TestHarness) Breakers() *services.CircuitBreakerRegistry {
	return h.breakers
}

// App returns the application instance.
func (h *TestHarness) App() *app.App {
	return h.app
}

// Router returns the HTTP router for making requests.
func (h *TestHarness) Router() http.Handler {
	return h.router
}

// Config returns the test configuration.
func (h *TestHarness) Config() *config.Config {
	return h.config
}

// DoRequest performs an HTTP request with an optional JSON body.
func (h *TestHarness) DoRequest(method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// DoHTMXForm submits form values the way the search form does.
func (h *TestHarness) DoHTMXForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *TestHarness) createTestConfig() *config.Config {
	cfg := config.NewTestConfig()
	cfg.AlphaVantage.BaseURL = h.mockServer.URL()
	cfg.Fetch.TimeoutSeconds = 5
	return cfg
}
