package handler

import (
	"errors"
	"net/http"
	"strings"

	ddsv1 "github.com/esnet/nsi-dds-go/api/dds/v1"
	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
)

// WriteError writes err as an ErrorType document. Errors that are not
// domain errors are logged and reported as internal errors.
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		err = domain.ErrBodyTooLarge.WithCause(err)
	}

	var de *domain.DomainError
	if !errors.As(err, &de) {
		logger.L(r.Context()).Error("internal error", "path", r.URL.Path, "error", err)
		de = domain.ErrInternalServer
		err = de
	}
	code := domain.GetErrorCode(err)
	status := errorCodeToHTTPStatus(code)

	w.Header().Set("X-Error-Code", code)
	if h.codec == nil {
		http.Error(w, err.Error(), status)
		return
	}

	body, encErr := h.codec.EncodeToString(&ddsv1.ErrorType{
		ID:          code,
		Label:       de.Message,
		Resource:    r.URL.Path,
		Description: err.Error(),
	})
	if encErr != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", ContentTypeXML)
	w.WriteHeader(status)
	if _, werr := w.Write([]byte(body)); werr != nil {
		logger.L(r.Context()).Debug("write error response failed", "error", werr)
	}
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4130"):
		return http.StatusRequestEntityTooLarge
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4030"), strings.HasSuffix(code, "-4031"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-5030"), code == domain.ErrSchemaInit.Code:
		return http.StatusServiceUnavailable
	case strings.Contains(code, "-40"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
