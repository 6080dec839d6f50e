package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-chatrelay/core"
)

// TalkService is the privileged outbound surface the talk-backed commands
// execute against. *actions.TalkClient satisfies it.
type TalkService interface {
	Write(ctx context.Context, chatID string, text string, attachment map[string]any, msgType int) error
	React(ctx context.Context, chatID string, logID string, linkID string, kind int) error
	Share(ctx context.Context, noticeID string, linkID string) error
}

type ReplyCommand struct {
	replier core.Replier
}

func NewReplyCommand(replier core.Replier) *ReplyCommand {
	return &ReplyCommand{replier: replier}
}

func (c *ReplyCommand) Execute(ctx context.Context, msg ReplyMessage) error {
	if c == nil || c.replier == nil {
		return commandDependencyError("command: reply requires a relay client")
	}
	ack, err := c.replier.Reply(ctx, msg.ChannelID, msg.Text)
	if err != nil {
		return err
	}
	storeResult(ctx, ack)
	return nil
}

type ReactCommand struct {
	talk TalkService
}

func NewReactCommand(talk TalkService) *ReactCommand {
	return &ReactCommand{talk: talk}
}

func (c *ReactCommand) Execute(ctx context.Context, msg ReactMessage) error {
	if c == nil || c.talk == nil {
		return commandDependencyError("command: react requires a talk client")
	}
	return c.talk.React(ctx, msg.ChannelID, msg.MessageID, msg.LinkID, msg.Kind)
}

type ShareCommand struct {
	talk TalkService
}

func NewShareCommand(talk TalkService) *ShareCommand {
	return &ShareCommand{talk: talk}
}

func (c *ShareCommand) Execute(ctx context.Context, msg ShareMessage) error {
	if c == nil || c.talk == nil {
		return commandDependencyError("command: share requires a talk client")
	}
	return c.talk.Share(ctx, msg.NoticeID, msg.LinkID)
}

type WriteCommand struct {
	talk TalkService
}

func NewWriteCommand(talk TalkService) *WriteCommand {
	return &WriteCommand{talk: talk}
}

func (c *WriteCommand) Execute(ctx context.Context, msg WriteMessage) error {
	if c == nil || c.talk == nil {
		return commandDependencyError("command: write requires a talk client")
	}
	return c.talk.Write(ctx, msg.ChannelID, msg.Text, msg.Attachment, msg.MsgType)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
