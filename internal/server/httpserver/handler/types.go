package handler

import (
	"time"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
)

// Response is the envelope of JSON responses.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// ListRecordsResponse is the data of GET /dds/notifications.
type ListRecordsResponse struct {
	Records []*domain.Record `json:"records"`
	Count   int              `json:"count"`
	Total   int              `json:"total"`
}

// StatusResponse is the data of the probe endpoints.
type StatusResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Reason string `json:"reason,omitempty"`
}
