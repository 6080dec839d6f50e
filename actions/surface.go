package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-chatrelay/core"
)

var (
	ErrNoChannel          = errors.New("actions: no channel resolved for this notification")
	ErrShareTargetMissing = errors.New("actions: share requires a notice id")
)

// Surface is the capability set bound to one classified notification. It is
// built once per request from the resolved identifiers; handlers invoke it
// through the core.Actions contract and receive the outcome directly.
type Surface struct {
	channelID string
	messageID string
	linkID    string
	replier   core.Replier
	talk      *TalkClient
}

// Bind constructs the surface for the given resolved entities. Identifiers
// absent from the notification stay empty and the corresponding capability
// fails fast when invoked.
func Bind(replier core.Replier, talk *TalkClient, channelID string, messageID string, channel *core.Channel) *Surface {
	linkID := ""
	if channel != nil {
		linkID = channel.LinkID
		if channel.ID != "" {
			channelID = channel.ID
		}
	}
	return &Surface{
		channelID: channelID,
		messageID: messageID,
		linkID:    linkID,
		replier:   replier,
		talk:      talk,
	}
}

// Reply sends text into the bound channel through the relay.
func (s *Surface) Reply(ctx context.Context, text string) (map[string]any, error) {
	if s == nil || s.replier == nil {
		return nil, core.Internal("actions: surface requires a replier", nil)
	}
	if strings.TrimSpace(s.channelID) == "" {
		return nil, core.ActionFailure(ErrNoChannel, "actions: reply failed", nil)
	}
	return s.replier.Reply(ctx, s.channelID, text)
}

// React attaches a reaction to the bound message. A non-positive kind uses
// the configured default.
func (s *Surface) React(ctx context.Context, kind int) error {
	if s == nil || s.talk == nil {
		return core.Internal("actions: surface requires a talk client", nil)
	}
	return s.talk.React(ctx, s.channelID, s.messageID, s.linkID, kind)
}

// Share posts the given notice, routing by whether the bound channel is
// community-linked.
func (s *Surface) Share(ctx context.Context, noticeID string) error {
	if s == nil || s.talk == nil {
		return core.Internal("actions: surface requires a talk client", nil)
	}
	if strings.TrimSpace(noticeID) == "" {
		return core.ActionFailure(ErrShareTargetMissing, "actions: share failed", nil)
	}
	return s.talk.Share(ctx, noticeID, s.linkID)
}

// TalkAPI sends a message directly to the platform, bypassing the relay's
// reply path.
func (s *Surface) TalkAPI(ctx context.Context, text string, attachment map[string]any, msgType int) error {
	if s == nil || s.talk == nil {
		return core.Internal("actions: surface requires a talk client", nil)
	}
	return s.talk.Write(ctx, s.channelID, text, attachment, msgType)
}

var _ core.Actions = (*Surface)(nil)
