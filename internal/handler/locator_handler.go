package handler

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/service"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// PageData is what the form page renders
// Location drives whether the result block is shown at all
type PageData struct {
	IP       string
	Location string
	Error    string
}

// LocatorHandler handles the single form page
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Parse the submitted form
//   - Call the locator service
//   - Render the HTML page with the right status code
type LocatorHandler struct {
	service *service.LocatorService
	logger  *logger.Logger
}

// NewLocatorHandler creates a new handler with the given service
func NewLocatorHandler(service *service.LocatorService, log *logger.Logger) *LocatorHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &LocatorHandler{
		service: service,
		logger:  log.WithComponent("LocatorHandler"),
	}
}

// Index handles GET / and renders the bare form
func (h *LocatorHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, PageData{})
}

// Submit handles POST / with form field "ip"
//
// The value is used as-is: no trimming, no IP syntax check.
// A request without the field at all is a 400.
func (h *LocatorHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, PageData{Error: "Malformed form submission"})
		return
	}

	values, ok := r.PostForm["ip"]
	if !ok || len(values) == 0 {
		h.render(w, http.StatusBadRequest, PageData{Error: "Missing 'ip' form field"})
		return
	}
	ip := values[0]

	lookup, err := h.service.Locate(r.Context(), ip)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("ip", ip).
			Msg("Lookup failed")
		h.render(w, http.StatusInternalServerError, PageData{Error: "Internal server error"})
		return
	}

	h.render(w, http.StatusOK, PageData{
		IP:       lookup.IP,
		Location: lookup.Location,
	})
}

// render executes the page template into a buffer so a template error can still become a 500
func (h *LocatorHandler) render(w http.ResponseWriter, statusCode int, data PageData) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	w.Write(buf.Bytes())
}
