package core

import (
	"errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestErrorConstructorsCarryEnvelope(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		textCode string
		category goerrors.Category
		code     int
	}{
		{"malformed", MalformedPayload("bad body", nil), RelayErrorMalformedPayload, goerrors.CategoryBadInput, http.StatusBadRequest},
		{"lookup", LookupFailure(errors.New("down"), "lookup", nil), RelayErrorLookupFailed, goerrors.CategoryExternal, http.StatusBadGateway},
		{"session", SessionUnavailable(nil, "no session", nil), RelayErrorSessionUnavailable, goerrors.CategoryAuth, http.StatusBadGateway},
		{"action", ActionFailure(errors.New("denied"), "action", nil), RelayErrorActionFailed, goerrors.CategoryExternal, http.StatusBadGateway},
		{"handler", HandlerFailure(errors.New("boom"), KindMessage), RelayErrorHandlerFailed, goerrors.CategoryOperation, http.StatusInternalServerError},
		{"internal", Internal("wiring", nil), RelayErrorInternal, goerrors.CategoryInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		var rich *goerrors.Error
		if !goerrors.As(tc.err, &rich) {
			t.Fatalf("%s: expected rich error, got %T", tc.name, tc.err)
		}
		if rich.TextCode != tc.textCode {
			t.Fatalf("%s: expected text code %q, got %q", tc.name, tc.textCode, rich.TextCode)
		}
		if rich.Category != tc.category {
			t.Fatalf("%s: expected category %v, got %v", tc.name, tc.category, rich.Category)
		}
		if rich.Code != tc.code {
			t.Fatalf("%s: expected code %d, got %d", tc.name, tc.code, rich.Code)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := LookupFailure(cause, "lookup failed", map[string]any{"table": "chat_logs"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved through wrap")
	}
}

func TestHandlerFailureRecordsKind(t *testing.T) {
	err := HandlerFailure(errors.New("boom"), KindJoin)
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected rich error")
	}
	if rich.Metadata["kind"] != "join" {
		t.Fatalf("expected kind metadata, got %#v", rich.Metadata)
	}
}

func TestHasTextCode(t *testing.T) {
	err := MalformedPayload("bad", nil)
	if !HasTextCode(err, RelayErrorMalformedPayload) {
		t.Fatalf("expected matching text code")
	}
	if HasTextCode(err, RelayErrorLookupFailed) {
		t.Fatalf("unexpected text code match")
	}
	if HasTextCode(errors.New("plain"), RelayErrorInternal) {
		t.Fatalf("plain errors carry no text code")
	}
	if HasTextCode(nil, RelayErrorInternal) {
		t.Fatalf("nil carries no text code")
	}
}

func TestRelayErrorMapperFillsEnvelope(t *testing.T) {
	mapped := relayErrorMapper(errors.New("plain failure"))
	if mapped == nil {
		t.Fatalf("expected mapped error")
	}
	if mapped.Code == 0 {
		t.Fatalf("expected a status code")
	}
	if mapped.TextCode == "" {
		t.Fatalf("expected a text code")
	}
	if relayErrorMapper(nil) != nil {
		t.Fatalf("nil maps to nil")
	}
}

func TestDefaultRelayTextCodeByCategory(t *testing.T) {
	cases := map[goerrors.Category]string{
		goerrors.CategoryBadInput:  RelayErrorMalformedPayload,
		goerrors.CategoryAuth:      RelayErrorSessionUnavailable,
		goerrors.CategoryExternal:  RelayErrorLookupFailed,
		goerrors.CategoryOperation: RelayErrorHandlerFailed,
		goerrors.CategoryInternal:  RelayErrorInternal,
	}
	for category, want := range cases {
		if got := defaultRelayTextCode(category); got != want {
			t.Fatalf("category %v: expected %q, got %q", category, want, got)
		}
	}
}
