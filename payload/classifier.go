package payload

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/goliatone/go-chatrelay/core"
)

const (
	primaryTypeMessage = "1"
	primaryTypeFeed    = "0"
)

// Classifier maps a normalized notification to one event kind using the
// two-level discriminator: the envelope "type" code, then a feed sub-code
// for feed notifications.
type Classifier struct {
	feed map[int]core.EventKind
}

func NewClassifier(codes core.FeedCodes) *Classifier {
	return &Classifier{feed: codes.Map()}
}

// Classify is pure: it never mutates the notification and returns KindNone
// for anything outside the discriminator tables.
func (c *Classifier) Classify(raw core.RawNotification) core.EventKind {
	if c == nil || raw == nil {
		return core.KindNone
	}
	envelope := raw.Envelope()
	switch primaryType(envelope) {
	case primaryTypeMessage:
		return core.KindMessage
	case primaryTypeFeed:
		code, ok := feedCode(envelope)
		if !ok {
			return core.KindNone
		}
		if kind, ok := c.feed[code]; ok {
			return kind
		}
	}
	return core.KindNone
}

func primaryType(envelope map[string]any) string {
	value, ok := envelope["type"]
	if !ok {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatInt(int64(typed), 10)
	case int:
		return strconv.Itoa(typed)
	default:
		return ""
	}
}

// feedCode searches the secondary discriminator in priority order: the
// envelope root, the message sub-document, then a string-embedded message
// sub-document parsed on the fly. The first non-null value wins.
func feedCode(envelope map[string]any) (int, bool) {
	if code, ok := coerceInt(envelope["feedType"]); ok {
		return code, true
	}
	switch message := envelope["message"].(type) {
	case map[string]any:
		if code, ok := coerceInt(message["feedType"]); ok {
			return code, true
		}
	case string:
		if parsed, ok := ParseEmbedded(message); ok {
			if nested, ok := parsed.(map[string]any); ok {
				if code, ok := coerceInt(nested["feedType"]); ok {
					return code, true
				}
			}
		}
	}
	return 0, false
}

func coerceInt(value any) (int, bool) {
	switch typed := value.(type) {
	case nil:
		return 0, false
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		return int(typed), true
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
