package chatrelay

import "github.com/goliatone/go-chatrelay/core"

type Config = core.Config

type EventKind = core.EventKind
type EventContext = core.EventContext
type Handler = core.Handler
type Failure = core.Failure

type RawNotification = core.RawNotification
type User = core.User
type Channel = core.Channel
type Message = core.Message
type Session = core.Session
type Actions = core.Actions

type DeliveryEntry = core.DeliveryEntry
type DeliveryLog = core.DeliveryLog

const (
	KindMessage = core.KindMessage
	KindJoin    = core.KindJoin
	KindLeave   = core.KindLeave
	KindKick    = core.KindKick
	KindDelete  = core.KindDelete
	KindHide    = core.KindHide
	KindAll     = core.KindAll
	KindError   = core.KindError
	KindNone    = core.KindNone
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}
