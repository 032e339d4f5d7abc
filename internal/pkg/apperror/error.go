package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
)

type Kind int

const (
	KindTransient Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "transient"
	}
}

const (
	MessageGeneric        = "Something went wrong. Please try again."
	MessageSessionExpired = "Your session has expired. Please log in again."
	MessageAccessDenied   = "You do not have permission to perform this action."
	MessageNotFound       = "The requested resource was not found."
	MessageInvalidInput   = "Please check your input and try again."
	MessageNetwork        = "Network error. Please check your connection."
	MessageServerError    = "Internal server error. Please try again later."
)

type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Data       map[string]any
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func New(kind Kind, statusCode int, message string, cause error) *Error {
	if message == "" {
		message = defaultMessage(kind, statusCode)
	}
	return &Error{Kind: kind, StatusCode: statusCode, Message: message, Cause: cause}
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, http.StatusUnauthorized, message, nil)
}

// Forbidden always carries the static access-denied text.
func Forbidden(cause error) *Error {
	return New(KindForbidden, http.StatusForbidden, MessageAccessDenied, cause)
}

func Validation(message string, cause error) *Error {
	return New(KindValidation, http.StatusBadRequest, message, cause)
}

func Transient(message string, cause error) *Error {
	return New(KindTransient, 0, message, cause)
}

// FromResponse classifies a non-2xx backend response and extracts its human-readable message.
func FromResponse(statusCode int, body []byte) *Error {
	kind := kindForStatus(statusCode)
	data := decodeBody(body)
	msg := extractMessage(data)

	e := New(kind, statusCode, msg, nil)
	if kind == KindForbidden {
		e.Message = MessageAccessDenied
	}
	e.Data = data
	return e
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}

func IsUnauthenticated(err error) bool { return is(err, KindUnauthenticated) }
func IsForbidden(err error) bool       { return is(err, KindForbidden) }
func IsNotFound(err error) bool        { return is(err, KindNotFound) }
func IsValidation(err error) bool      { return is(err, KindValidation) }

// Message returns the user-facing text carried by err, or fallback when it carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if fallback != "" {
		return fallback
	}
	return MessageGeneric
}

// ServerMessage returns the message the server put in its error body, or "" when the body carried
// none and the error text is a local default.
func ServerMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return extractMessage(e.Data)
}

func is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindTransient
	}
}

func defaultMessage(kind Kind, status int) string {
	switch kind {
	case KindUnauthenticated:
		return MessageSessionExpired
	case KindForbidden:
		return MessageAccessDenied
	case KindNotFound:
		return MessageNotFound
	case KindValidation:
		return MessageInvalidInput
	default:
		if status >= 500 {
			return MessageServerError
		}
		return MessageGeneric
	}
}

func decodeBody(body []byte) map[string]any {
	if len(body) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil
	}
	return m
}

func extractMessage(data map[string]any) string {
	if data == nil {
		return ""
	}
	for _, k := range []string{"detail", "message", "error"} {
		if s := firstString(data[k]); s != "" {
			return s
		}
	}
	if s := firstString(data["non_field_errors"]); s != "" {
		return s
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := firstString(data[k]); s != "" {
			return k + ": " + s
		}
	}
	return ""
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, it := range t {
			if s := firstString(it); s != "" {
				return s
			}
		}
	}
	return ""
}
