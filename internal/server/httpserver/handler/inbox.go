package handler

import (
	"net/http"
	"strconv"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/internal/storage"
)

// handleListRecords handles GET /dds/notifications?limit=N.
func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if h.inbox == nil {
		h.WriteError(w, r, domain.ErrServiceUnavailable.WithDetails("inbox disabled"))
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.WriteError(w, r, domain.ErrBadRequest.WithDetails("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	limit = storage.NormalizeLimit(limit)

	records, err := h.inbox.List(r.Context(), limit)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	total, err := h.inbox.Count(r.Context())
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	if records == nil {
		records = []*domain.Record{}
	}

	h.writeJSON(w, r, http.StatusOK, &ListRecordsResponse{
		Records: records,
		Count:   len(records),
		Total:   total,
	})
}

// handleGetRecord handles GET /dds/notifications/{id}.
func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	if h.inbox == nil {
		h.WriteError(w, r, domain.ErrServiceUnavailable.WithDetails("inbox disabled"))
		return
	}

	record, err := h.inbox.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, record)
}
