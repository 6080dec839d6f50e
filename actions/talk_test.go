package actions

import (
	"context"
	"encoding/json"
	"errors"
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
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     http.Header{},
	}, nil
}

type stubSessions struct {
	session core.Session
	err     error
	calls   int
}

func (s *stubSessions) AcquireSession(context.Context) (core.Session, error) {
	s.calls++
	if s.err != nil {
		return core.Session{}, s.err
	}
	return s.session, nil
}

func testTalkClient(doer *stubDoer, sessions *stubSessions) *TalkClient {
	client := NewTalkClient(core.DefaultConfig().Talk, sessions, doer)
	client.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return client
}

func TestWriteSendsSplitCredentialHeaders(t *testing.T) {
	doer := &stubDoer{}
	sessions := &stubSessions{session: core.Session{AccessToken: "tok", DeviceID: "dev"}}
	client := testTalkClient(doer, sessions)

	err := client.Write(context.Background(), "9", "hello", nil, 0)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if sessions.calls != 1 {
		t.Fatalf("expected a fresh session per call, got %d", sessions.calls)
	}

	req := doer.requests[0]
	if req.Header.Get("Authorization") != "tok" {
		t.Fatalf("unexpected authorization: %q", req.Header.Get("Authorization"))
	}
	if req.Header.Get("Duuid") != "dev" {
		t.Fatalf("unexpected device header: %q", req.Header.Get("Duuid"))
	}
	body := doer.bodies[0]
	if body["chatId"] != "9" || body["message"] != "hello" {
		t.Fatalf("unexpected body: %#v", body)
	}
	if got, _ := body["type"].(json.Number); got.String() != "1" {
		t.Fatalf("expected default write type 1, got %v", body["type"])
	}
	if got, _ := body["msgId"].(json.Number); got.String() != "1700000000000" {
		t.Fatalf("expected clock-derived msgId, got %v", body["msgId"])
	}
	if _, ok := body["attachment"].(map[string]any); !ok {
		t.Fatalf("expected empty attachment object, got %#v", body["attachment"])
	}
}

func TestWriteRequiresChannel(t *testing.T) {
	doer := &stubDoer{}
	sessions := &stubSessions{session: core.Session{AccessToken: "tok", DeviceID: "dev"}}
	client := testTalkClient(doer, sessions)

	err := client.Write(context.Background(), "  ", "hello", nil, 0)
	if err == nil {
		t.Fatalf("expected missing channel error")
	}
	if !core.HasTextCode(err, core.RelayErrorActionFailed) {
		t.Fatalf("expected action failed code, got %v", err)
	}
	if len(doer.requests) != 0 {
		t.Fatalf("no request should be sent without a channel")
	}
}

func TestWriteSessionFailurePropagates(t *testing.T) {
	doer := &stubDoer{}
	cause := core.SessionUnavailable(errors.New("down"), "actions: no session", nil)
	client := testTalkClient(doer, &stubSessions{err: cause})

	err := client.Write(context.Background(), "9", "hello", nil, 0)
	if !core.HasTextCode(err, core.RelayErrorSessionUnavailable) {
		t.Fatalf("expected session unavailable code, got %v", err)
	}
	if len(doer.requests) != 0 {
		t.Fatalf("no request should be sent without a session")
	}
}

func TestReactSendsCombinedBearerAndDefaultKind(t *testing.T) {
	doer := &stubDoer{}
	sessions := &stubSessions{session: core.Session{AccessToken: "tok", DeviceID: "dev"}}
	client := testTalkClient(doer, sessions)

	if err := client.React(context.Background(), "9", "42", "", 0); err != nil {
		t.Fatalf("react: %v", err)
	}

	req := doer.requests[0]
	if req.Header.Get("Authorization") != "tok-dev" {
		t.Fatalf("expected combined bearer, got %q", req.Header.Get("Authorization"))
	}
	if !strings.HasSuffix(req.URL.Path, "/chats/9/bubble/reactions") {
		t.Fatalf("unexpected path: %s", req.URL.Path)
	}
	body := doer.bodies[0]
	if got, _ := body["type"].(json.Number); got.String() != "3" {
		t.Fatalf("expected default reaction kind 3, got %v", body["type"])
	}
	if body["logId"] != "42" {
		t.Fatalf("unexpected logId: %v", body["logId"])
	}
	if body["linkId"] != nil {
		t.Fatalf("expected null linkId for unlinked channel, got %v", body["linkId"])
	}
}

func TestReactExplicitKindAndLink(t *testing.T) {
	doer := &stubDoer{}
	sessions := &stubSessions{session: core.Session{AccessToken: "tok", DeviceID: "dev"}}
	client := testTalkClient(doer, sessions)

	if err := client.React(context.Background(), "9", "42", "777", 5); err != nil {
		t.Fatalf("react: %v", err)
	}
	body := doer.bodies[0]
	if got, _ := body["type"].(json.Number); got.String() != "5" {
		t.Fatalf("expected explicit kind 5, got %v", body["type"])
	}
	if body["linkId"] != "777" {
		t.Fatalf("expected linkId passthrough, got %v", body["linkId"])
	}
}

func TestShareRoutesByLinkPresence(t *testing.T) {
	sessions := &stubSessions{session: core.Session{AccessToken: "tok", DeviceID: "dev"}}

	t.Run("linked channel", func(t *testing.T) {
		doer := &stubDoer{}
		client := testTalkClient(doer, sessions)
		if err := client.Share(context.Background(), "n1", "777"); err != nil {
			t.Fatalf("share: %v", err)
		}
		req := doer.requests[0]
		if req.URL.Host != "open.kakao.com" {
			t.Fatalf("expected linked host, got %s", req.URL.Host)
		}
		if req.URL.Query().Get("link_id") != "777" {
			t.Fatalf("expected link_id query, got %s", req.URL.RawQuery)
		}
	})

	t.Run("plain channel", func(t *testing.T) {
		doer := &stubDoer{}
		client := testTalkClient(doer, sessions)
		if err := client.Share(context.Background(), "n1", ""); err != nil {
			t.Fatalf("share: %v", err)
		}
		req := doer.requests[0]
		if req.URL.Host != "talkmoim-api.kakao.com" {
			t.Fatalf("expected plain host, got %s", req.URL.Host)
		}
		if req.URL.RawQuery != "" {
			t.Fatalf("expected no query, got %s", req.URL.RawQuery)
		}
	})
}

func TestShareSendsAgentHeaders(t *testing.T) {
	doer := &stubDoer{}
	sessions := &stubSessions{session: core.Session{AccessToken: "tok", DeviceID: "dev"}}
	client := testTalkClient(doer, sessions)

	if err := client.Share(context.Background(), "n1", ""); err != nil {
		t.Fatalf("share: %v", err)
	}
	req := doer.requests[0]
	if req.Header.Get("Authorization") != "tok-dev" {
		t.Fatalf("expected combined bearer, got %q", req.Header.Get("Authorization"))
	}
	if req.Header.Get("A") != "android/25.8.2/ko" {
		t.Fatalf("unexpected agent header: %q", req.Header.Get("A"))
	}
	if req.Header.Get("content-type") != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type: %q", req.Header.Get("content-type"))
	}
}

func TestTalkStatusFailureWrapsActionError(t *testing.T) {
	doer := &stubDoer{status: http.StatusForbidden}
	sessions := &stubSessions{session: core.Session{AccessToken: "tok", DeviceID: "dev"}}
	client := testTalkClient(doer, sessions)

	err := client.Write(context.Background(), "9", "hello", nil, 0)
	if err == nil {
		t.Fatalf("expected status error")
	}
	if !core.HasTextCode(err, core.RelayErrorActionFailed) {
		t.Fatalf("expected action failed code, got %v", err)
	}
}
