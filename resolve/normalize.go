package resolve

import (
	"strings"

	"github.com/goliatone/go-chatrelay/core"
	"github.com/goliatone/go-chatrelay/payload"
)

// normalizeUser shapes a member-directory row. A nil row is a nil entity;
// the envelope's display sender fills in only when the row lacks a name.
func (r *Resolver) normalizeUser(row map[string]any, userID string, raw core.RawNotification) *core.User {
	if row == nil {
		return nil
	}
	id := payload.IDString(row[r.cfg.MemberKey])
	if id == "" {
		id = userID
	}
	name := firstString(row, r.cfg.UserNameFields)
	if name == "" {
		name = raw.Sender()
	}
	return &core.User{
		ID:    id,
		Name:  name,
		Image: firstString(row, r.cfg.UserImageFields),
		Type:  firstString(row, r.cfg.UserTypeFields),
		Raw:   row,
	}
}

func (r *Resolver) normalizeChannel(row map[string]any, channelID string, raw core.RawNotification) *core.Channel {
	if row == nil {
		return nil
	}
	id := payload.IDString(row[r.cfg.ChannelKey])
	if id == "" {
		id = channelID
	}
	name := firstString(row, []string{"name"})
	if name == "" {
		name = raw.Room()
	}
	return &core.Channel{
		ID:     id,
		Name:   name,
		LinkID: payload.IDString(row["link_id"]),
		Raw:    row,
	}
}

// normalizeMessage shapes a message-log row. Content falls back from the row
// to the envelope's message field to the display text; image and reply
// references come from the attachment, which may itself need parsing.
func (r *Resolver) normalizeMessage(row map[string]any, messageID string, raw core.RawNotification) *core.Message {
	if row == nil {
		return nil
	}
	envelope := raw.Envelope()
	id := payload.IDString(row[r.cfg.MessageKey])
	if id == "" {
		id = messageID
	}
	content := firstString(row, r.cfg.ContentFields)
	if content == "" {
		if text, ok := envelope["message"].(string); ok {
			content = text
		}
	}
	if content == "" {
		content = raw.Msg()
	}
	attachment := attachmentValue(row["attachment"])
	if attachment == nil {
		attachment = attachmentValue(envelope["attachment"])
	}
	return &core.Message{
		ID:      id,
		Content: content,
		Image:   attachmentImage(attachment),
		ReplyTo: attachmentReplyTo(attachment),
		Raw:     row,
	}
}

// attachmentValue tolerates an attachment that is already structured or one
// that arrives as a string-encoded document. Malformed data yields nil.
func attachmentValue(value any) map[string]any {
	switch typed := value.(type) {
	case map[string]any:
		return typed
	case string:
		parsed, ok := payload.ParseEmbedded(typed)
		if !ok {
			return nil
		}
		structured, _ := parsed.(map[string]any)
		return structured
	default:
		return nil
	}
}

func attachmentImage(attachment map[string]any) string {
	if attachment == nil {
		return ""
	}
	urls, _ := attachment["urls"].([]any)
	if len(urls) == 0 {
		return ""
	}
	first, _ := urls[0].(string)
	return first
}

func attachmentReplyTo(attachment map[string]any) string {
	if attachment == nil {
		return ""
	}
	return payload.IDString(attachment["src_logId"])
}

func firstString(row map[string]any, fields []string) string {
	for _, field := range fields {
		if value, ok := row[field].(string); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
