// Package server exposes the dashboard over HTTP.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"salespro-go/internal/config"
	"salespro-go/internal/logger"
	"salespro-go/internal/metrics"
	"salespro-go/internal/processor"
	"salespro-go/internal/store"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

var errBadPlan = errors.New("plan must be a non-negative number")

type Server struct {
	cfg     *config.Config
	uploads *store.Store
	proc    *processor.Processor
}

func New(cfg *config.Config, uploads *store.Store, proc *processor.Processor) *Server {
	return &Server{cfg: cfg, uploads: uploads, proc: proc}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/", s.handleIndex)
	r.Post("/report", s.handleOneShotReport)

	r.Route("/api/uploads", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleUploadInfo)
			r.Get("/branches", s.handleBranches)
			r.Get("/branches/{branch}", s.handleBranch)
			r.Post("/branches/{branch}/advice", s.handleAdvice)
			r.Get("/branches/{branch}/charts/{kind}.{format}", s.handleChart)
			r.Get("/branches/{branch}/report", s.handleReport)
		})
	})
	return r
}

// requestID makes sure every request carries X-Request-ID so all log lines
// of one request share it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := logger.RequestID(r)
		r.Header.Set("X-Request-ID", id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.New().WithRequest(r).WithFields(logrus.Fields{
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Component("server").WithError(err).Error("failed to write response")
	}
}

// writeError maps known errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, metrics.ErrUnknownBranch),
		errors.Is(err, errUnknownChart):
		status = http.StatusNotFound
	case errors.Is(err, errBadPlan), errors.Is(err, errBadUpload):
		status = http.StatusBadRequest
	case errors.As(err, &maxErr):
		status = http.StatusRequestEntityTooLarge
	}

	entry := logger.New().WithRequest(r).WithError(err).WithField("status", status)
	if status >= 500 {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// planParam reads ?plan=; empty means no override.
func planParam(r *http.Request) (float64, error) {
	v := r.URL.Query().Get("plan")
	if v == "" {
		v = r.FormValue("plan")
	}
	if v == "" {
		return 0, nil
	}
	plan, err := strconv.ParseFloat(v, 64)
	if err != nil || plan < 0 {
		return 0, errBadPlan
	}
	return plan, nil
}

func branchParam(r *http.Request) string {
	b := chi.URLParam(r, "branch")
	if u, err := url.PathUnescape(b); err == nil {
		return u
	}
	return b
}
