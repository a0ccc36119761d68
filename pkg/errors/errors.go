// Package errors defines the coded errors of panotour.
//
// Only document-level failures are Go errors: a tour document that cannot be
// found, read or decoded at all, an unknown format, or a broken config file.
// Problems inside individual scene or hotspot records are data (see
// pkg/tour.ParseError) and never become an *Error.
//
//	err := errors.Wrap(errors.ErrCodeInvalidDocument, cause, "decode %s", path)
//	if errors.IsDocumentError(err) {
//	    // report and exit non-zero
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable kind of an error. The server returns it as
// the "kind" of an error response.
type Code string

const (
	// ErrCodeInvalidInput is a malformed identifier.
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	// ErrCodeInvalidDocument is a document that is not a decodable tour.
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	// ErrCodeInvalidFormat is an unknown input or output format.
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	// ErrCodeInvalidPath is a document path that cannot be a file name.
	ErrCodeInvalidPath Code = "INVALID_PATH"
	// ErrCodeInvalidConfig is a config file that cannot be used.
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	// ErrCodeFileNotFound is a document path that does not exist.
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
)

// Error carries a code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage returns err's text without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// IsDocumentError reports whether err means the input document is missing,
// unreadable, or not a structured document.
func IsDocumentError(err error) bool {
	switch GetCode(err) {
	case ErrCodeFileNotFound, ErrCodeInvalidDocument, ErrCodeInvalidPath:
		return true
	}
	return false
}

// HTTPStatus maps err to a response status. Caller mistakes are 4xx,
// everything else, including uncoded errors, is 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidDocument, ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
