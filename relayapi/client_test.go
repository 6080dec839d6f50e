package relayapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-chatrelay/core"
)

type stubDoer struct {
	requests []*http.Request
	bodies   []map[string]any
	status   int
	response string
	err      error
}

func (d *stubDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req)
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		decoder := json.NewDecoder(strings.NewReader(string(raw)))
		decoder.UseNumber()
		var decoded map[string]any
		_ = decoder.Decode(&decoded)
		d.bodies = append(d.bodies, decoded)
	} else {
		d.bodies = append(d.bodies, nil)
	}
	if d.err != nil {
		return nil, d.err
	}
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(d.response)),
		Header:     http.Header{},
	}, nil
}

func testClient(doer *stubDoer) *Client {
	return NewClient(core.RelayConfig{
		BaseURL: "http://relay.local:3000",
		Timeout: time.Second,
	}, doer)
}

func TestFindRowBuildsParameterizedQuery(t *testing.T) {
	doer := &stubDoer{response: `{"data":[{"user_id":123456789012345678,"nickname":"n"}]}`}
	client := testClient(doer)

	row, err := client.FindRow(context.Background(), "open_chat_member", "user_id", "123456789012345678")
	if err != nil {
		t.Fatalf("find row: %v", err)
	}
	if row == nil {
		t.Fatalf("expected a row")
	}
	if got, ok := row["user_id"].(json.Number); !ok || got.String() != "123456789012345678" {
		t.Fatalf("expected json.Number identifier, got %#v", row["user_id"])
	}

	req := doer.requests[0]
	if req.Method != http.MethodPost || req.URL.Path != "/query" {
		t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
	}
	body := doer.bodies[0]
	if body["query"] != "SELECT * FROM open_chat_member WHERE user_id = ?" {
		t.Fatalf("unexpected query: %v", body["query"])
	}
	bind, _ := body["bind"].([]any)
	if len(bind) != 1 || bind[0] != "123456789012345678" {
		t.Fatalf("unexpected bind values: %v", body["bind"])
	}
}

func TestFindRowMissingRowIsNotAnError(t *testing.T) {
	doer := &stubDoer{response: `{"data":[]}`}
	client := testClient(doer)

	row, err := client.FindRow(context.Background(), "chat_rooms", "id", "9")
	if err != nil {
		t.Fatalf("find row: %v", err)
	}
	if row != nil {
		t.Fatalf("expected nil row, got %#v", row)
	}
}

func TestFindRowTransportFailure(t *testing.T) {
	doer := &stubDoer{status: http.StatusBadGateway, response: `{}`}
	client := testClient(doer)

	_, err := client.FindRow(context.Background(), "chat_logs", "id", "42")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if !core.HasTextCode(err, core.RelayErrorLookupFailed) {
		t.Fatalf("expected lookup failed code, got %v", err)
	}
}

func TestReplySendsTextPayload(t *testing.T) {
	doer := &stubDoer{response: `{"success":true}`}
	client := testClient(doer)

	ack, err := client.Reply(context.Background(), "9", "welcome")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if ack["success"] != true {
		t.Fatalf("expected ack passthrough, got %#v", ack)
	}

	req := doer.requests[0]
	if req.URL.Path != "/reply" {
		t.Fatalf("unexpected path: %s", req.URL.Path)
	}
	body := doer.bodies[0]
	if body["type"] != "text" || body["roomId"] != "9" || body["data"] != "welcome" {
		t.Fatalf("unexpected reply payload: %#v", body)
	}
}

func TestReplyFailure(t *testing.T) {
	doer := &stubDoer{status: http.StatusInternalServerError, response: ""}
	client := testClient(doer)

	_, err := client.Reply(context.Background(), "9", "welcome")
	if err == nil {
		t.Fatalf("expected reply error")
	}
	if !core.HasTextCode(err, core.RelayErrorActionFailed) {
		t.Fatalf("expected action failed code, got %v", err)
	}
}

func TestAcquireSession(t *testing.T) {
	doer := &stubDoer{response: `{"aot":{"access_token":"tok","d_id":"dev"}}`}
	client := testClient(doer)

	session, err := client.AcquireSession(context.Background())
	if err != nil {
		t.Fatalf("acquire session: %v", err)
	}
	if session.AccessToken != "tok" || session.DeviceID != "dev" {
		t.Fatalf("unexpected session: %#v", session)
	}
	if session.Bearer() != "tok-dev" {
		t.Fatalf("unexpected bearer: %q", session.Bearer())
	}
	req := doer.requests[0]
	if req.Method != http.MethodGet || req.URL.Path != "/aot" {
		t.Fatalf("unexpected request: %s %s", req.Method, req.URL.Path)
	}
}

func TestAcquireSessionIncompleteCredentials(t *testing.T) {
	doer := &stubDoer{response: `{"aot":{"access_token":"tok"}}`}
	client := testClient(doer)

	_, err := client.AcquireSession(context.Background())
	if err == nil {
		t.Fatalf("expected incomplete session error")
	}
	if !core.HasTextCode(err, core.RelayErrorSessionUnavailable) {
		t.Fatalf("expected session unavailable code, got %v", err)
	}
}
