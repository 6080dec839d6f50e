package command

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-chatrelay/actions"
)

var (
	_ TalkService = (*actions.TalkClient)(nil)

	_ gocmd.Commander[ReplyMessage] = (*ReplyCommand)(nil)
	_ gocmd.Commander[ReactMessage] = (*ReactCommand)(nil)
	_ gocmd.Commander[ShareMessage] = (*ShareCommand)(nil)
	_ gocmd.Commander[WriteMessage] = (*WriteCommand)(nil)
)
