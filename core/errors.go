package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	RelayErrorMalformedPayload   = "RELAY_MALFORMED_PAYLOAD"
	RelayErrorLookupFailed       = "RELAY_LOOKUP_FAILED"
	RelayErrorSessionUnavailable = "RELAY_SESSION_UNAVAILABLE"
	RelayErrorActionFailed       = "RELAY_ACTION_FAILED"
	RelayErrorHandlerFailed      = "RELAY_HANDLER_FAILED"
	RelayErrorInternal           = "RELAY_INTERNAL_ERROR"
)

// MalformedPayload marks an inbound body the pipeline could not work with.
func MalformedPayload(message string, metadata map[string]any) error {
	return newRelayError(message, goerrors.CategoryBadInput, http.StatusBadRequest, RelayErrorMalformedPayload, metadata)
}

// LookupFailure wraps a row-store transport failure. Absent rows are not
// failures; this covers timeouts and non-success responses only.
func LookupFailure(source error, message string, metadata map[string]any) error {
	return wrapRelayError(source, goerrors.CategoryExternal, message, http.StatusBadGateway, RelayErrorLookupFailed, metadata)
}

// SessionUnavailable wraps a failed or incomplete credential fetch.
func SessionUnavailable(source error, message string, metadata map[string]any) error {
	return wrapRelayError(source, goerrors.CategoryAuth, message, http.StatusBadGateway, RelayErrorSessionUnavailable, metadata)
}

// ActionFailure wraps a failed privileged outbound call. It surfaces to the
// action's caller, typically a handler, which decides how to treat it.
func ActionFailure(source error, message string, metadata map[string]any) error {
	return wrapRelayError(source, goerrors.CategoryExternal, message, http.StatusBadGateway, RelayErrorActionFailed, metadata)
}

// HandlerFailure wraps an error thrown by a registered handler before it is
// offered to the error kind.
func HandlerFailure(source error, kind EventKind) error {
	return wrapRelayError(
		source,
		goerrors.CategoryOperation,
		"dispatch: handler failed",
		http.StatusInternalServerError,
		RelayErrorHandlerFailed,
		map[string]any{"kind": string(kind)},
	)
}

func Internal(message string, metadata map[string]any) error {
	return newRelayError(message, goerrors.CategoryInternal, http.StatusInternalServerError, RelayErrorInternal, metadata)
}

// HasTextCode reports whether err carries the given relay text code.
func HasTextCode(err error, textCode string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCode
}

func newRelayError(message string, category goerrors.Category, code int, textCode string, metadata map[string]any) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func wrapRelayError(source error, category goerrors.Category, message string, code int, textCode string, metadata map[string]any) error {
	if source == nil {
		return newRelayError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// relayErrorMapper coerces arbitrary errors into the relay error envelope so
// callers always see a category, an HTTP status, and a text code.
func relayErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureRelayErrorEnvelope(rich)
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureRelayErrorEnvelope(mapped)
}

func ensureRelayErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = relayHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultRelayTextCode(err.Category)
	}
	return err
}

func defaultRelayTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return RelayErrorMalformedPayload
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return RelayErrorSessionUnavailable
	case goerrors.CategoryExternal:
		return RelayErrorLookupFailed
	case goerrors.CategoryOperation:
		return RelayErrorHandlerFailed
	default:
		return RelayErrorInternal
	}
}

func relayHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
