// Package errors carries the typed application errors shared by services
// and the HTTP layer. Each Code maps to a fixed HTTP status and public
// message; detailed causes stay in the wrapped chain for logging.
package errors

import (
	stdErrors "errors"
	"net/http"
	"strings"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
	CodeFileRead      Code = "FILE_READ_ERROR"
	CodeParse         Code = "PARSE_ERROR"
	CodeTooLarge      Code = "PAYLOAD_TOO_LARGE"
)

// Metadata describes how a Code is surfaced to clients.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

const (
	retryable    = true
	withDetails  = true
	final        = false
	hiddenDetail = false
)

var metadataByCode = map[Code]Metadata{
	CodeValidation:    {http.StatusBadRequest, final, "validation failed", withDetails},
	CodeUnauthorized:  {http.StatusUnauthorized, final, "authentication required", hiddenDetail},
	CodeForbidden:     {http.StatusForbidden, final, "access denied", hiddenDetail},
	CodeNotFound:      {http.StatusNotFound, final, "resource not found", hiddenDetail},
	CodeConflict:      {http.StatusConflict, final, "conflict detected", hiddenDetail},
	CodeStateConflict: {http.StatusUnprocessableEntity, final, "state transition disallowed", withDetails},
	CodeIdempotency:   {http.StatusConflict, final, "idempotency key reused", withDetails},
	CodeRateLimit:     {http.StatusTooManyRequests, final, "rate limit exceeded", hiddenDetail},
	CodeInternal:      {http.StatusInternalServerError, retryable, "internal server error", hiddenDetail},
	CodeDependency:    {http.StatusServiceUnavailable, retryable, "dependency unavailable", withDetails},
	CodeFileRead:      {http.StatusBadRequest, final, "could not read the selected file", withDetails},
	CodeParse:         {http.StatusUnprocessableEntity, final, "file format is not supported", withDetails},
	CodeTooLarge:      {http.StatusRequestEntityTooLarge, final, "payload too large", withDetails},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	meta, ok := metadataByCode[code]
	if !ok {
		return metadataByCode[CodeInternal]
	}
	return meta
}

// Error is a coded error with an optional cause and client-facing details.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to err. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets the details in place and returns e for chaining.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(e.code))
	b.WriteString(": ")
	b.WriteString(e.message)
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// IsCode reports whether the outermost typed error in err's chain has code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
