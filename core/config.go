package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultWebhookPath    = "/message"
	defaultRelayTimeout   = 10 * time.Second
	defaultTalkTimeout    = 10 * time.Second
	defaultReactionKind   = 3
	defaultTalkWriteType  = 1
	defaultTalkWriteURL   = "https://talk-external.kakao.com/talk/write"
	defaultReactionURL    = "https://talk-pilsner.kakao.com/messaging"
	defaultShareLinkedURL = "https://open.kakao.com/moim"
	defaultShareURL       = "https://talkmoim-api.kakao.com"
)

type WebhookConfig struct {
	Path string `koanf:"path" mapstructure:"path"`
}

type RelayConfig struct {
	BaseURL string        `koanf:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `koanf:"timeout" mapstructure:"timeout"`
}

// TalkConfig carries the privileged messaging-platform endpoints and the
// client identity strings those endpoints require.
type TalkConfig struct {
	WriteURL        string        `koanf:"write_url" mapstructure:"write_url"`
	ReactionBaseURL string        `koanf:"reaction_base_url" mapstructure:"reaction_base_url"`
	ShareLinkedURL  string        `koanf:"share_linked_url" mapstructure:"share_linked_url"`
	ShareURL        string        `koanf:"share_url" mapstructure:"share_url"`
	Timeout         time.Duration `koanf:"timeout" mapstructure:"timeout"`
	UserAgent       string        `koanf:"user_agent" mapstructure:"user_agent"`
	TalkAgent       string        `koanf:"talk_agent" mapstructure:"talk_agent"`
	Language        string        `koanf:"language" mapstructure:"language"`
	ReactionKind    int           `koanf:"reaction_kind" mapstructure:"reaction_kind"`
	WriteType       int           `koanf:"write_type" mapstructure:"write_type"`
}

// FeedCodes maps the relay's secondary discriminator values onto event
// kinds. The defaults are taken from observed relay behavior; environments
// running a different relay build override them wholesale.
type FeedCodes struct {
	Join   int `koanf:"join" mapstructure:"join"`
	Leave  int `koanf:"leave" mapstructure:"leave"`
	Kick   int `koanf:"kick" mapstructure:"kick"`
	Delete int `koanf:"delete" mapstructure:"delete"`
	Hide   int `koanf:"hide" mapstructure:"hide"`
}

// Map inverts the configured codes into a lookup table for the classifier.
func (f FeedCodes) Map() map[int]EventKind {
	return map[int]EventKind{
		f.Join:   KindJoin,
		f.Leave:  KindLeave,
		f.Kick:   KindKick,
		f.Delete: KindDelete,
		f.Hide:   KindHide,
	}
}

type EventsConfig struct {
	FeedCodes FeedCodes `koanf:"feed_codes" mapstructure:"feed_codes"`
}

// ResolverConfig names the logical row-store tables, their lookup keys, and
// the field-fallback chains applied when normalizing heterogeneous rows.
// Relay schema drift across versions is absorbed here instead of in code.
type ResolverConfig struct {
	MemberTable  string `koanf:"member_table" mapstructure:"member_table"`
	MemberKey    string `koanf:"member_key" mapstructure:"member_key"`
	ChannelTable string `koanf:"channel_table" mapstructure:"channel_table"`
	ChannelKey   string `koanf:"channel_key" mapstructure:"channel_key"`
	MessageTable string `koanf:"message_table" mapstructure:"message_table"`
	MessageKey   string `koanf:"message_key" mapstructure:"message_key"`

	UserNameFields  []string `koanf:"user_name_fields" mapstructure:"user_name_fields"`
	UserImageFields []string `koanf:"user_image_fields" mapstructure:"user_image_fields"`
	UserTypeFields  []string `koanf:"user_type_fields" mapstructure:"user_type_fields"`
	ContentFields   []string `koanf:"content_fields" mapstructure:"content_fields"`
}

type Config struct {
	ServiceName string         `koanf:"service_name" mapstructure:"service_name"`
	Webhook     WebhookConfig  `koanf:"webhook" mapstructure:"webhook"`
	Relay       RelayConfig    `koanf:"relay" mapstructure:"relay"`
	Talk        TalkConfig     `koanf:"talk" mapstructure:"talk"`
	Events      EventsConfig   `koanf:"events" mapstructure:"events"`
	Resolver    ResolverConfig `koanf:"resolver" mapstructure:"resolver"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "chatrelay",
		Webhook: WebhookConfig{
			Path: defaultWebhookPath,
		},
		Relay: RelayConfig{
			BaseURL: "http://127.0.0.1:3000",
			Timeout: defaultRelayTimeout,
		},
		Talk: TalkConfig{
			WriteURL:        defaultTalkWriteURL,
			ReactionBaseURL: defaultReactionURL,
			ShareLinkedURL:  defaultShareLinkedURL,
			ShareURL:        defaultShareURL,
			Timeout:         defaultTalkTimeout,
			UserAgent:       "okhttp/4.12.0",
			TalkAgent:       "android/25.8.2",
			Language:        "ko",
			ReactionKind:    defaultReactionKind,
			WriteType:       defaultTalkWriteType,
		},
		Events: EventsConfig{
			FeedCodes: FeedCodes{
				Join:   4,
				Leave:  2,
				Kick:   6,
				Delete: 14,
				Hide:   26,
			},
		},
		Resolver: ResolverConfig{
			MemberTable:  "open_chat_member",
			MemberKey:    "user_id",
			ChannelTable: "chat_rooms",
			ChannelKey:   "id",
			MessageTable: "chat_logs",
			MessageKey:   "id",
			UserNameFields: []string{
				"nickname",
				"name",
			},
			UserImageFields: []string{
				"full_profile_image_url",
				"profile_image_url",
				"original_profile_image_url",
				"profile_image",
			},
			UserTypeFields: []string{
				"link_member_type",
				"profile_type",
				"type",
			},
			ContentFields: []string{
				"message",
				"content",
			},
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if !strings.HasPrefix(strings.TrimSpace(c.Webhook.Path), "/") {
		return fmt.Errorf("core: webhook path must start with /")
	}
	if strings.TrimSpace(c.Relay.BaseURL) == "" {
		return fmt.Errorf("core: relay base_url is required")
	}
	if c.Relay.Timeout <= 0 {
		return fmt.Errorf("core: relay timeout must be positive")
	}
	if c.Talk.Timeout <= 0 {
		return fmt.Errorf("core: talk timeout must be positive")
	}
	if strings.TrimSpace(c.Resolver.MemberTable) == "" ||
		strings.TrimSpace(c.Resolver.ChannelTable) == "" ||
		strings.TrimSpace(c.Resolver.MessageTable) == "" {
		return fmt.Errorf("core: resolver table names are required")
	}
	return nil
}
