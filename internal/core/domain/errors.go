package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes have the form DDS-<AREA>-<NNNN>; the last four digits carry the
// HTTP status class.
type DomainError struct {
	Code    string // Error code (e.g., "DDS-XML-4000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// TypeMismatchError reports a document that decoded to a different type
// than the one requested. It unwraps to ErrTypeMismatch.
type TypeMismatchError struct {
	Expected string // requested Go type
	Actual   string // type bound to the document's root element
	Element  string // root element name as {namespace}local
}

// NewTypeMismatchError creates a TypeMismatchError.
func NewTypeMismatchError(expected, actual, element string) *TypeMismatchError {
	return &TypeMismatchError{Expected: expected, Actual: actual, Element: element}
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("[%s] %s: expected XML for %s but found %s (element %s)",
		ErrTypeMismatch.Code, ErrTypeMismatch.Message, e.Expected, e.Actual, e.Element)
}

// Unwrap returns ErrTypeMismatch so the code is visible to errors.Is and
// GetErrorCode.
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// ============================================================================
// Schema and codec errors (SCHEMA, IO, XML)
// ============================================================================

var (
	// ErrSchemaInit indicates the schema context could not be built.
	ErrSchemaInit = NewDomainError("DDS-SCHEMA-5000", "schema context initialization failed")

	// ErrIO indicates the underlying file or stream failed.
	ErrIO = NewDomainError("DDS-IO-5001", "i/o error")

	// ErrDecode indicates the content could not be bound to a known type.
	ErrDecode = NewDomainError("DDS-XML-4000", "unable to decode XML document")

	// ErrTypeMismatch indicates the document decoded to an unexpected type.
	ErrTypeMismatch = NewDomainError("DDS-XML-4001", "unexpected document type")

	// ErrNoXMLStart indicates the stream ended before an XML declaration.
	ErrNoXMLStart = NewDomainError("DDS-XML-4002", "stream exhausted before XML start found")

	// ErrEncode indicates a value could not be serialized.
	ErrEncode = NewDomainError("DDS-XML-5002", "unable to encode XML document")
)

// ============================================================================
// Inbox errors (INBOX)
// ============================================================================

var (
	// ErrRecordNotFound indicates the requested inbox record does not exist.
	ErrRecordNotFound = NewDomainError("DDS-INBOX-4040", "notification record not found")

	// ErrRecordValidation indicates a record failed validation.
	ErrRecordValidation = NewDomainError("DDS-INBOX-4001", "notification record validation failed")

	// ErrStorage indicates a storage layer error.
	ErrStorage = NewDomainError("DDS-INBOX-5001", "storage error")
)

// ============================================================================
// System errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("DDS-SYS-5000", "internal server error")

	// ErrServiceUnavailable indicates the service is temporarily unavailable.
	ErrServiceUnavailable = NewDomainError("DDS-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("DDS-SYS-4000", "bad request")

	// ErrPeerNotAllowed indicates the caller is not in the peer allow list.
	ErrPeerNotAllowed = NewDomainError("DDS-SYS-4031", "peer not allowed")

	// ErrBodyTooLarge indicates the request body exceeded the configured limit.
	ErrBodyTooLarge = NewDomainError("DDS-SYS-4130", "request body too large")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("DDS-SYS-4290", "too many requests")
)
