package core

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestDefaultFeedCodes(t *testing.T) {
	mapping := DefaultConfig().Events.FeedCodes.Map()
	cases := map[int]EventKind{
		4:  KindJoin,
		2:  KindLeave,
		6:  KindKick,
		14: KindDelete,
		26: KindHide,
	}
	for code, want := range cases {
		if got := mapping[code]; got != want {
			t.Fatalf("code %d: expected %q, got %q", code, want, got)
		}
	}
	if len(mapping) != len(cases) {
		t.Fatalf("unexpected extra codes: %#v", mapping)
	}
}

func TestFeedCodesOverride(t *testing.T) {
	codes := FeedCodes{Join: 100, Leave: 101, Kick: 102, Delete: 103, Hide: 104}
	mapping := codes.Map()
	if mapping[100] != KindJoin || mapping[104] != KindHide {
		t.Fatalf("override mapping incorrect: %#v", mapping)
	}
}

func TestConfigValidateFailures(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"missing service name", func(c *Config) { c.ServiceName = " " }, "service_name"},
		{"bad webhook path", func(c *Config) { c.Webhook.Path = "message" }, "webhook path"},
		{"missing relay url", func(c *Config) { c.Relay.BaseURL = "" }, "base_url"},
		{"bad relay timeout", func(c *Config) { c.Relay.Timeout = 0 }, "relay timeout"},
		{"bad talk timeout", func(c *Config) { c.Talk.Timeout = -1 }, "talk timeout"},
		{"missing tables", func(c *Config) { c.Resolver.MemberTable = "" }, "table names"},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.message) {
			t.Fatalf("%s: expected %q in error, got %v", tc.name, tc.message, err)
		}
	}
}

func TestEventKindValidate(t *testing.T) {
	for _, kind := range []EventKind{KindMessage, KindJoin, KindLeave, KindKick, KindDelete, KindHide, KindAll, KindError} {
		if err := kind.Validate(); err != nil {
			t.Fatalf("kind %q must validate: %v", kind, err)
		}
	}
	if err := EventKind("bogus").Validate(); err == nil {
		t.Fatalf("expected unknown kind error")
	}
	if err := KindNone.Validate(); err == nil {
		t.Fatalf("the empty kind is not registrable")
	}
}

func TestEventKindSpecific(t *testing.T) {
	if !KindMessage.Specific() || !KindHide.Specific() {
		t.Fatalf("concrete kinds must be specific")
	}
	if KindAll.Specific() || KindError.Specific() || KindNone.Specific() {
		t.Fatalf("synthetic kinds must not be specific")
	}
}

func TestSessionBearerAndComplete(t *testing.T) {
	session := Session{AccessToken: "tok", DeviceID: "dev"}
	if session.Bearer() != "tok-dev" {
		t.Fatalf("unexpected bearer: %q", session.Bearer())
	}
	if !session.Complete() {
		t.Fatalf("expected complete session")
	}
	if (Session{AccessToken: "tok"}).Complete() {
		t.Fatalf("session without device id is incomplete")
	}
	if (Session{DeviceID: "dev"}).Complete() {
		t.Fatalf("session without token is incomplete")
	}
}
