package command

import "strings"

const (
	TypeReply = "chatrelay.command.reply"
	TypeReact = "chatrelay.command.react"
	TypeShare = "chatrelay.command.share"
	TypeWrite = "chatrelay.command.talk.write"
)

// ReplyMessage posts a plain text reply into a channel through the relay.
type ReplyMessage struct {
	ChannelID string
	Text      string
}

func (ReplyMessage) Type() string { return TypeReply }

func (m ReplyMessage) Validate() error {
	if strings.TrimSpace(m.ChannelID) == "" {
		return commandInvalidInputError("command: channel id is required")
	}
	if m.Text == "" {
		return commandInvalidInputError("command: reply text is required")
	}
	return nil
}

// ReactMessage attaches a reaction to a message bubble. Kind zero means the
// configured default reaction.
type ReactMessage struct {
	ChannelID string
	MessageID string
	LinkID    string
	Kind      int
}

func (ReactMessage) Type() string { return TypeReact }

func (m ReactMessage) Validate() error {
	if strings.TrimSpace(m.ChannelID) == "" {
		return commandInvalidInputError("command: channel id is required")
	}
	if strings.TrimSpace(m.MessageID) == "" {
		return commandInvalidInputError("command: message id is required")
	}
	if m.Kind < 0 {
		return commandInvalidInputError("command: reaction kind must not be negative")
	}
	return nil
}

// ShareMessage republishes a notice, optionally scoped to an open link.
type ShareMessage struct {
	NoticeID string
	LinkID   string
}

func (ShareMessage) Type() string { return TypeShare }

func (m ShareMessage) Validate() error {
	if strings.TrimSpace(m.NoticeID) == "" {
		return commandInvalidInputError("command: notice id is required")
	}
	return nil
}

// WriteMessage sends a message with an arbitrary talk payload type and
// attachment, bypassing the relay reply path.
type WriteMessage struct {
	ChannelID  string
	Text       string
	Attachment map[string]any
	MsgType    int
}

func (WriteMessage) Type() string { return TypeWrite }

func (m WriteMessage) Validate() error {
	if strings.TrimSpace(m.ChannelID) == "" {
		return commandInvalidInputError("command: channel id is required")
	}
	if m.Text == "" && m.Attachment == nil {
		return commandInvalidInputError("command: text or attachment is required")
	}
	return nil
}
