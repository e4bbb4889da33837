package api

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"

	"stock-viewer/config"
	"stock-viewer/internal/app"
	"stock-viewer/models"
	"stock-viewer/observability"
	"stock-viewer/services"
	"stock-viewer/templates"

	json "github.com/goccy/go-json"
)

const maxRequestBody = 1 << 20

// Handler handles HTTP API requests
type Handler struct {
	app      *app.App
	cfg      *config.Config
	breakers *services.CircuitBreakerRegistry
}

// NewHandler creates a new Handler. breakers is the registry the provider client
// reports through; nil selects the global registry.
func NewHandler(application *app.App, cfg *config.Config, breakers *services.CircuitBreakerRegistry) *Handler {
	if breakers == nil {
		breakers = services.GetGlobalRegistry()
	}
	return &Handler{app: application, cfg: cfg, breakers: breakers}
}

// HandleIndex serves the main application page for the current state
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.htmlResponse(w, templates.Index(h.app.State(), h.app.TimeRanges()), r)
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"state":  h.app.State().Kind,
	}

	cbStatus := h.breakers.Status()
	status["circuit_breakers"] = cbStatus

	// Any open breaker means the provider is being short-circuited
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// HandleFetch runs a fetch for the submitted symbol and range. HTMX requests get
// the panels partial, JSON clients get the resulting state, plain form posts
// get the full page.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	req, err := decodeFetchRequest(w, r)
	if err != nil {
		observability.WithError(err).Warn("invalid fetch request",
			"content_type", r.Header.Get("Content-Type"))
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := h.app.FetchStock(req.Symbol, req.RangeLabel)

	switch {
	case isHTMXRequest(r):
		h.htmlResponse(w, templates.Panels(state), r)
	case wantsJSON(r):
		h.jsonStatus(w, state, statusFor(state))
	default:
		h.htmlResponse(w, templates.Index(state, h.app.TimeRanges()), r)
	}
}

// HandleGetState returns the current view state
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	state := h.app.State()
	if isHTMXRequest(r) {
		h.htmlResponse(w, templates.Panels(state), r)
		return
	}
	h.jsonResponse(w, state)
}

// HandleGetPanels renders the panels partial for the current state
func (h *Handler) HandleGetPanels(w http.ResponseWriter, r *http.Request) {
	h.htmlResponse(w, templates.Panels(h.app.State()), r)
}

// HandleGetRanges returns the selectable time ranges
func (h *Handler) HandleGetRanges(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]interface{}{
		"ranges":  h.app.TimeRanges(),
		"default": models.DefaultRangeLabel,
	})
}

// Helper functions

// isHTMXRequest checks if the request is from HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func isJSONContent(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func wantsJSON(r *http.Request) bool {
	return isJSONContent(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

// decodeFetchRequest reads {symbol, range} from a JSON body or form fields.
// Normalization and validation happen in the app.
func decodeFetchRequest(w http.ResponseWriter, r *http.Request) (app.FetchRequest, error) {
	var req app.FetchRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if isJSONContent(r) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return req, err
		}
		if len(body) == 0 {
			return req, nil
		}
		if err := json.Unmarshal(body, &req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Symbol = r.PostFormValue("symbol")
	req.RangeLabel = r.PostFormValue("range")
	return req, nil
}

// statusFor maps a terminal state to the JSON response code
func statusFor(state models.ViewState) int {
	switch state.Kind {
	case models.ViewLoaded:
		return http.StatusOK
	case models.ViewError:
		if state.Error != nil && state.Error.Kind == models.ErrorValidation {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	default:
		// superseded by a fetch that is still running
		return http.StatusAccepted
	}
}

// templComponent matches the templ.Component interface
type templComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

// htmlResponse renders a templ component as HTML
func (h *Handler) htmlResponse(w http.ResponseWriter, component templComponent, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		observability.WithContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	h.jsonStatus(w, data, http.StatusOK)
}

func (h *Handler) jsonStatus(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		observability.Error("failed to encode JSON response", "error", err)
	}
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	h.jsonStatus(w, map[string]string{"error": message}, status)
}
