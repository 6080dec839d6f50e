package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver layers defaults < loaded < runtime before a final cfgx
// build and validation pass.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || strings.TrimSpace(cfg.Webhook.Path) != "" {
		layer["webhook"] = map[string]any{
			"path": cfg.Webhook.Path,
		}
	}
	if includeZero || strings.TrimSpace(cfg.Relay.BaseURL) != "" || cfg.Relay.Timeout > 0 {
		relay := map[string]any{}
		if includeZero || strings.TrimSpace(cfg.Relay.BaseURL) != "" {
			relay["base_url"] = cfg.Relay.BaseURL
		}
		if includeZero || cfg.Relay.Timeout > 0 {
			relay["timeout"] = cfg.Relay.Timeout
		}
		layer["relay"] = relay
	}
	if talk := talkLayer(cfg.Talk, includeZero); len(talk) > 0 {
		layer["talk"] = talk
	}
	if includeZero || cfg.Events.FeedCodes != (FeedCodes{}) {
		layer["events"] = map[string]any{
			"feed_codes": map[string]any{
				"join":   cfg.Events.FeedCodes.Join,
				"leave":  cfg.Events.FeedCodes.Leave,
				"kick":   cfg.Events.FeedCodes.Kick,
				"delete": cfg.Events.FeedCodes.Delete,
				"hide":   cfg.Events.FeedCodes.Hide,
			},
		}
	}
	if resolver := resolverLayer(cfg.Resolver, includeZero); len(resolver) > 0 {
		layer["resolver"] = resolver
	}
	return layer
}

func talkLayer(cfg TalkConfig, includeZero bool) map[string]any {
	layer := map[string]any{}
	setString := func(key string, value string) {
		if includeZero || strings.TrimSpace(value) != "" {
			layer[key] = value
		}
	}
	setString("write_url", cfg.WriteURL)
	setString("reaction_base_url", cfg.ReactionBaseURL)
	setString("share_linked_url", cfg.ShareLinkedURL)
	setString("share_url", cfg.ShareURL)
	setString("user_agent", cfg.UserAgent)
	setString("talk_agent", cfg.TalkAgent)
	setString("language", cfg.Language)
	if includeZero || cfg.Timeout > 0 {
		layer["timeout"] = cfg.Timeout
	}
	if includeZero || cfg.ReactionKind != 0 {
		layer["reaction_kind"] = cfg.ReactionKind
	}
	if includeZero || cfg.WriteType != 0 {
		layer["write_type"] = cfg.WriteType
	}
	return layer
}

func resolverLayer(cfg ResolverConfig, includeZero bool) map[string]any {
	layer := map[string]any{}
	setString := func(key string, value string) {
		if includeZero || strings.TrimSpace(value) != "" {
			layer[key] = value
		}
	}
	setFields := func(key string, values []string) {
		if includeZero || len(values) > 0 {
			layer[key] = append([]string(nil), values...)
		}
	}
	setString("member_table", cfg.MemberTable)
	setString("member_key", cfg.MemberKey)
	setString("channel_table", cfg.ChannelTable)
	setString("channel_key", cfg.ChannelKey)
	setString("message_table", cfg.MessageTable)
	setString("message_key", cfg.MessageKey)
	setFields("user_name_fields", cfg.UserNameFields)
	setFields("user_image_fields", cfg.UserImageFields)
	setFields("user_type_fields", cfg.UserTypeFields)
	setFields("content_fields", cfg.ContentFields)
	return layer
}
