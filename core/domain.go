package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownEventKind = errors.New("core: unknown event kind")

// EventKind is the closed set of semantic events the gateway classifies
// notifications into. KindAll is a synthetic dispatch target observing every
// classified event; KindError receives converted handler failures.
type EventKind string

const (
	KindMessage EventKind = "message"
	KindJoin    EventKind = "join"
	KindLeave   EventKind = "leave"
	KindKick    EventKind = "kick"
	KindDelete  EventKind = "delete"
	KindHide    EventKind = "hide"
	KindAll     EventKind = "all"
	KindError   EventKind = "error"

	// KindNone marks a notification no specific-kind handler should see.
	KindNone EventKind = ""
)

func (k EventKind) Validate() error {
	switch k {
	case KindMessage, KindJoin, KindLeave, KindKick, KindDelete, KindHide, KindAll, KindError:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownEventKind, string(k))
}

// Specific reports whether the kind is a concrete classified event as
// opposed to the catch-all or error targets.
func (k EventKind) Specific() bool {
	switch k {
	case KindMessage, KindJoin, KindLeave, KindKick, KindDelete, KindHide:
		return true
	}
	return false
}

// RawNotification is the untouched inbound webhook body after JSON decoding.
// It lives for a single request and is handed to handlers verbatim so they
// can reach fields the normalized entities do not carry.
type RawNotification map[string]any

// Envelope returns the nested "json" sub-object carrying the discriminators
// and entity ids. A missing or mistyped sub-object yields an empty map.
func (r RawNotification) Envelope() map[string]any {
	if r == nil {
		return map[string]any{}
	}
	if nested, ok := r["json"].(map[string]any); ok {
		return nested
	}
	return map[string]any{}
}

func (r RawNotification) Room() string {
	return stringField(r, "room")
}

func (r RawNotification) Sender() string {
	return stringField(r, "sender")
}

func (r RawNotification) Msg() string {
	return stringField(r, "msg")
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if value, ok := m[key].(string); ok {
		return value
	}
	return ""
}

// User is a member-directory row normalized into a stable shape. A nil *User
// means the row was absent; absence is never an error.
type User struct {
	ID    string
	Name  string
	Image string
	Type  string
	Raw   map[string]any
}

type Channel struct {
	ID     string
	Name   string
	LinkID string
	Raw    map[string]any
}

type Message struct {
	ID      string
	Content string
	Image   string
	ReplyTo string
	Raw     map[string]any
}

// Session is a transient credential pair required for privileged
// messaging-platform calls. It is acquired immediately before each use and
// never persisted or reused across calls.
type Session struct {
	AccessToken string
	DeviceID    string
}

// Bearer combines both credential components into the single authorization
// value the reaction and share endpoints expect.
func (s Session) Bearer() string {
	return s.AccessToken + "-" + s.DeviceID
}

func (s Session) Complete() bool {
	return strings.TrimSpace(s.AccessToken) != "" && strings.TrimSpace(s.DeviceID) != ""
}

// Actions is the capability surface bound to one classified notification.
// Implementations hold the resolved channel/message identifiers and an
// outbound client; each privileged call acquires a fresh session first.
type Actions interface {
	Reply(ctx context.Context, text string) (map[string]any, error)
	React(ctx context.Context, kind int) error
	Share(ctx context.Context, noticeID string) error
	TalkAPI(ctx context.Context, text string, attachment map[string]any, msgType int) error
}

// Failure describes one converted handler failure as observed by error-kind
// handlers.
type Failure struct {
	Err        error
	SourceKind EventKind
	Raw        RawNotification
}

// EventContext composes one classified notification with its resolved
// entities and bound action surface. It is built once per request and
// discarded after dispatch. Entities are nil when the source row (or its id)
// was absent. Failure is set only on error-kind emissions.
type EventContext struct {
	Kind    EventKind
	Raw     RawNotification
	User    *User
	Channel *Channel
	Message *Message
	Actions Actions
	Failure *Failure
}

// Handler consumes one emitted event. Returned errors are converted into an
// error-kind emission by the dispatcher; they never abort sibling handlers.
type Handler func(ctx context.Context, evt *EventContext) error

// DeliveryEntry records the terminal outcome of one processed webhook
// delivery for the optional ledger.
type DeliveryEntry struct {
	DeliveryID string
	Kind       EventKind
	Status     string
	Payload    []byte
}

// DeliveryLog is the optional delivery ledger contract. Recording is
// best-effort bookkeeping; implementations must not influence dispatch.
type DeliveryLog interface {
	Record(ctx context.Context, entry DeliveryEntry) error
}
