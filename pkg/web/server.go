// Package web serves the invoice form and its JSON API.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/invoice-generator/pkg/currency"
	"github.com/invoice-generator/pkg/export"
	"github.com/invoice-generator/pkg/invoice"
	"github.com/invoice-generator/pkg/logger"
	"github.com/invoice-generator/pkg/session"
	"github.com/invoice-generator/pkg/submission"
)

//go:embed templates/*.html
var templates embed.FS

// maxLogoSize limits logo uploads to 5MB.
const maxLogoSize = 5 * 1024 * 1024

// Options configures how submissions are exported.
type Options struct {
	// Format is the document format used when a submit request names none.
	Format string
	// Archive receives every submitted invoice in addition to the download.
	// It may be nil.
	Archive submission.Exporter
}

// Server handles the form page and the draft API for one session.
type Server struct {
	session *session.Session
	opts    Options
	tmpl    *template.Template
	log     *slog.Logger
}

// New returns a Server for s. An empty Format defaults to pdf.
func New(s *session.Session, opts Options, l *slog.Logger) *Server {
	if opts.Format == "" {
		opts.Format = "pdf"
	}
	return &Server{
		session: s,
		opts:    opts,
		tmpl:    template.Must(template.ParseFS(templates, "templates/*.html")),
		log:     logger.OrDiscard(l),
	}
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogger)

	r.HandleFunc("/", s.index).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/currencies", s.currencies).Methods(http.MethodGet)
	api.HandleFunc("/draft", s.getDraft).Methods(http.MethodGet)
	api.HandleFunc("/draft/fields/{name}", s.setField).Methods(http.MethodPut)
	api.HandleFunc("/draft/logo", s.uploadLogo).Methods(http.MethodPost)
	api.HandleFunc("/draft/logo", s.removeLogo).Methods(http.MethodDelete)
	api.HandleFunc("/draft/items", s.addItem).Methods(http.MethodPost)
	api.HandleFunc("/draft/items/{id}", s.editItem).Methods(http.MethodPut)
	api.HandleFunc("/draft/items/{id}", s.removeItem).Methods(http.MethodDelete)
	api.HandleFunc("/draft/reset", s.reset).Methods(http.MethodPost)
	api.HandleFunc("/draft/example", s.example).Methods(http.MethodPost)
	api.HandleFunc("/submit", s.submit).Methods(http.MethodPost)
	api.HandleFunc("/history", s.history).Methods(http.MethodGet)
	api.HandleFunc("/history/{index:[0-9]+}/load", s.loadHistory).Methods(http.MethodPost)

	return r
}

type indexPage struct {
	Draft      invoice.Invoice
	History    []invoice.Invoice
	Currencies []string
	Formats    []string
	Format     string
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	page := indexPage{
		Draft:      s.session.Draft(),
		History:    s.session.History(),
		Currencies: currency.Codes(),
		Formats:    export.Formats,
		Format:     s.opts.Format,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		s.log.ErrorContext(r.Context(), "render index", "error", err)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) currencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, currency.Codes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fieldErr *invoice.InvalidFieldError
		valueErr *invoice.InvalidValueError
		rangeErr *invoice.IndexOutOfRangeError
		itemErr  *invoice.LineItemNotFoundError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &fieldErr), errors.As(err, &valueErr), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.As(err, &rangeErr), errors.As(err, &itemErr):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.log.WarnContext(r.Context(), "rejected request", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
