package resolve

import (
	"context"
	"sync"

	"github.com/goliatone/go-chatrelay/core"
	"github.com/goliatone/go-chatrelay/payload"
)

// Identifiers are the three independent row keys extracted from one
// normalized notification. Empty values short-circuit their lookup.
type Identifiers struct {
	UserID    string
	ChannelID string
	MessageID string
}

// ExtractIdentifiers reads the entity ids from the notification envelope,
// rendering each as an exact-digit string.
func ExtractIdentifiers(raw core.RawNotification) Identifiers {
	envelope := raw.Envelope()
	return Identifiers{
		UserID:    payload.IDString(envelope["user_id"]),
		ChannelID: payload.IDString(envelope["chat_id"]),
		MessageID: payload.IDString(envelope["id"]),
	}
}

type Entities struct {
	User    *core.User
	Channel *core.Channel
	Message *core.Message
}

type Resolver struct {
	store core.RowStore
	cfg   core.ResolverConfig
}

func NewResolver(store core.RowStore, cfg core.ResolverConfig) *Resolver {
	return &Resolver{store: store, cfg: cfg}
}

// Resolve performs the three lookups concurrently and joins them before
// normalizing. All three rows (or their nil results) are available before it
// returns; the first transport failure wins and aborts the result.
func (r *Resolver) Resolve(ctx context.Context, raw core.RawNotification) (Entities, error) {
	if r == nil || r.store == nil {
		return Entities{}, core.Internal("resolve: resolver requires a row store", nil)
	}
	ids := ExtractIdentifiers(raw)

	var (
		wg       sync.WaitGroup
		userRow  map[string]any
		chanRow  map[string]any
		msgRow   map[string]any
		lookupEr [3]error
	)
	lookup := func(id string, table string, key string, row *map[string]any, errSlot *error) {
		if id == "" {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := r.store.FindRow(ctx, table, key, id)
			if err != nil {
				*errSlot = err
				return
			}
			*row = found
		}()
	}
	lookup(ids.UserID, r.cfg.MemberTable, r.cfg.MemberKey, &userRow, &lookupEr[0])
	lookup(ids.ChannelID, r.cfg.ChannelTable, r.cfg.ChannelKey, &chanRow, &lookupEr[1])
	lookup(ids.MessageID, r.cfg.MessageTable, r.cfg.MessageKey, &msgRow, &lookupEr[2])
	wg.Wait()

	for _, err := range lookupEr {
		if err != nil {
			return Entities{}, err
		}
	}

	return Entities{
		User:    r.normalizeUser(userRow, ids.UserID, raw),
		Channel: r.normalizeChannel(chanRow, ids.ChannelID, raw),
		Message: r.normalizeMessage(msgRow, ids.MessageID, raw),
	}, nil
}
