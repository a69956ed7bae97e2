package handler

import (
	"net/http"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/esnet/nsi-dds-go/internal/storage"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/internal/telemetry/metric"
	"github.com/esnet/nsi-dds-go/internal/xmlcodec"
)

// Content types.
const (
	ContentTypeXML  = "application/xml"
	ContentTypeJSON = "application/json"
)

// Handler serves the DDS routes.
type Handler struct {
	codec    *xmlcodec.Codec
	inbox    storage.Inbox
	metrics  *metric.Registry
	logger   logger.Logger
	mux      *http.ServeMux
	draining atomic.Bool
}

// Config holds the handler dependencies. Inbox and Metrics may be nil.
type Config struct {
	Codec   *xmlcodec.Codec
	Inbox   storage.Inbox
	Metrics *metric.Registry
	Logger  logger.Logger
}

// New creates a Handler.
func New(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	h := &Handler{
		codec:   cfg.Codec,
		inbox:   cfg.Inbox,
		metrics: cfg.Metrics,
		logger:  log,
		mux:     http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /dds/ping", h.handlePing)
	h.mux.HandleFunc("POST /dds/notifications", h.handleNotifications)
	h.mux.HandleFunc("GET /dds/notifications", h.handleListRecords)
	h.mux.HandleFunc("GET /dds/notifications/{id}", h.handleGetRecord)
}

// SetDraining marks the handler as shutting down; /ready then fails.
func (h *Handler) SetDraining() {
	h.draining.Store(true)
}

// handlePing handles GET /dds/ping.
func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", ContentTypeXML)
	w.WriteHeader(http.StatusOK)
}

// writeJSON writes data in the standard envelope, indented.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.MarshalIndent(NewResponse(logger.RequestIDFromContext(r.Context()), data), "", "  ")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.L(r.Context()).Debug("write response failed", "error", err)
	}
}
