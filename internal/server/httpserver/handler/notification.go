package handler

import (
	"errors"
	"net"
	"net/http"

	ddsv1 "github.com/esnet/nsi-dds-go/api/dds/v1"
	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/internal/xmlcodec"
)

// handleNotifications handles POST /dds/notifications.
//
// The body may carry bytes ahead of the XML declaration (a known chunked
// transfer artifact); they are skipped before decoding.
func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.L(ctx)

	if h.codec == nil {
		h.WriteError(w, r, domain.ErrServiceUnavailable.WithDetails("schema context unavailable"))
		return
	}

	body, err := h.codec.SeekProlog(r.Body)
	if err != nil {
		h.rejectNotification(w, r, err)
		return
	}
	list, err := xmlcodec.DecodeStream[ddsv1.NotificationListType](h.codec, body)
	if err != nil {
		h.rejectNotification(w, r, err)
		return
	}

	log.Info("notification received",
		"id", list.ID,
		"href", list.Href,
		"provider_id", list.ProviderID,
		"notifications", len(list.Notification),
		"skipped_bytes", body.Skipped())
	for _, n := range list.Notification {
		log.Info("notification",
			"event", string(n.Event),
			"document_id", n.Document.ID,
			"nsa", n.Document.NSA,
			"type", n.Document.Type)
	}

	record, err := newRecord(r, list, body.Skipped())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	if h.inbox != nil {
		if err := h.inbox.Append(ctx, record); err != nil {
			log.Error("store notification failed", "record_id", record.ID, "error", err)
			h.WriteError(w, r, err)
			return
		}
		w.Header().Set("Location", "/dds/notifications/"+record.ID)
	}
	h.metrics.NotificationReceived(record.EventCounts(), body.Skipped())

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) rejectNotification(w http.ResponseWriter, r *http.Request, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		err = domain.ErrBodyTooLarge.WithCause(err)
	}
	h.metrics.DecodeError(domain.GetErrorCode(err))
	logger.L(r.Context()).Warn("notification rejected", "error", err)
	h.WriteError(w, r, err)
}

func newRecord(r *http.Request, list *ddsv1.NotificationListType, skipped int64) (*domain.Record, error) {
	record, err := domain.NewRecord(list.ID, list.ProviderID)
	if err != nil {
		return nil, err
	}
	record.Href = list.Href
	record.RequestID = logger.RequestIDFromContext(r.Context())
	record.RemoteAddr = remoteHost(r)
	record.SkippedBytes = skipped

	record.Entries = make([]domain.Entry, 0, len(list.Notification))
	for _, n := range list.Notification {
		e := domain.Entry{
			Event:      string(n.Event),
			DocumentID: n.Document.ID,
			NSA:        n.Document.NSA,
			Type:       n.Document.Type,
		}
		if n.Discovered != nil {
			e.Discovered = n.Discovered.UnixMilli()
		}
		record.Entries = append(record.Entries, e)
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
