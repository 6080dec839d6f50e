// Package chatrelay turns raw chat-platform webhook notifications into typed
// events with resolved entities and a bound action surface, and dispatches
// them to registered handlers.
package chatrelay

import (
	"context"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-chatrelay/actions"
	"github.com/goliatone/go-chatrelay/command"
	"github.com/goliatone/go-chatrelay/core"
	"github.com/goliatone/go-chatrelay/dispatch"
	"github.com/goliatone/go-chatrelay/gateway"
	"github.com/goliatone/go-chatrelay/payload"
	"github.com/goliatone/go-chatrelay/relayapi"
	"github.com/goliatone/go-chatrelay/resolve"
)

type gatewayBuilder struct {
	logger          core.Logger
	loggerProvider  core.LoggerProvider
	metricsRecorder core.MetricsRecorder
	httpClient      core.HTTPDoer

	rowStore core.RowStore
	replier  core.Replier
	sessions core.SessionSource
	ledger   core.DeliveryLog

	configProvider  core.ConfigProvider
	optionsResolver core.OptionsResolver

	persistenceClient any
	repositoryFactory any
}

// Option customizes the gateway wiring before construction.
type Option func(*gatewayBuilder)

func WithLogger(logger core.Logger) Option {
	return func(b *gatewayBuilder) { b.logger = logger }
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *gatewayBuilder) { b.loggerProvider = provider }
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(b *gatewayBuilder) { b.metricsRecorder = recorder }
}

// WithHTTPClient replaces the outbound HTTP client used for both the relay
// and the messaging-platform endpoints.
func WithHTTPClient(client core.HTTPDoer) Option {
	return func(b *gatewayBuilder) { b.httpClient = client }
}

// WithRowStore replaces the entity lookup backend. The default is the relay
// query endpoint.
func WithRowStore(store core.RowStore) Option {
	return func(b *gatewayBuilder) { b.rowStore = store }
}

func WithReplier(replier core.Replier) Option {
	return func(b *gatewayBuilder) { b.replier = replier }
}

func WithSessionSource(sessions core.SessionSource) Option {
	return func(b *gatewayBuilder) { b.sessions = sessions }
}

func WithDeliveryLog(ledger core.DeliveryLog) Option {
	return func(b *gatewayBuilder) { b.ledger = ledger }
}

func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(b *gatewayBuilder) { b.configProvider = provider }
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(b *gatewayBuilder) { b.optionsResolver = resolver }
}

// WithPersistenceClient hands an already configured persistence client to
// the repository factory when one is set.
func WithPersistenceClient(client any) Option {
	return func(b *gatewayBuilder) { b.persistenceClient = client }
}

// WithRepositoryFactory supplies a delivery ledger factory, typically
// sqlstore.NewRepositoryFactory().
func WithRepositoryFactory(factory any) Option {
	return func(b *gatewayBuilder) { b.repositoryFactory = factory }
}

// Commands bundles the outbound operations as go-command handlers for hosts
// that drive messaging through a command bus.
type Commands struct {
	Reply *command.ReplyCommand
	React *command.ReactCommand
	Share *command.ShareCommand
	Write *command.WriteCommand
}

// Gateway is the assembled webhook pipeline. Register handlers with On, then
// mount HTTPHandler or feed bodies to Process directly.
type Gateway struct {
	config         core.Config
	logger         core.Logger
	loggerProvider core.LoggerProvider
	observer       core.Observer
	registry       *dispatch.Registry
	dispatcher     *dispatch.Dispatcher
	processor      *gateway.Processor
	relay          *relayapi.Client
	talk           *actions.TalkClient
	ledger         core.DeliveryLog
	commands       Commands
}

func New(cfg core.Config, opts ...Option) (*Gateway, error) {
	builder := gatewayBuilder{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("chatrelay", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("chatrelay"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = core.NopMetricsRecorder{}
	}
	if builder.configProvider == nil {
		builder.configProvider = core.NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = core.GoOptionsResolver{}
	}
	if builder.httpClient == nil {
		builder.httpClient = &http.Client{}
	}

	defaults := core.DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, err
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, cfg)
	if err != nil {
		return nil, err
	}
	if err := finalConfig.Validate(); err != nil {
		return nil, err
	}

	relay := relayapi.NewClient(finalConfig.Relay, builder.httpClient)
	if builder.rowStore == nil {
		builder.rowStore = relay
	}
	if builder.replier == nil {
		builder.replier = relay
	}
	if builder.sessions == nil {
		builder.sessions = relay
	}

	if builder.ledger == nil && builder.repositoryFactory != nil {
		if factory, ok := builder.repositoryFactory.(interface{ BuildStores(any) error }); ok {
			if err := factory.BuildStores(builder.persistenceClient); err != nil {
				return nil, err
			}
		}
		if provider, ok := builder.repositoryFactory.(ledgerProvider); ok {
			builder.ledger = provider.DeliveryLedger()
		}
	}

	observer := core.Observer{
		Logger:  logger,
		Metrics: builder.metricsRecorder,
	}
	registry := dispatch.NewRegistry()
	dispatcher := dispatch.NewDispatcher(registry, observer)
	talk := actions.NewTalkClient(finalConfig.Talk, builder.sessions, builder.httpClient)

	processor, err := gateway.NewProcessor(finalConfig, gateway.Deps{
		Classifier: payload.NewClassifier(finalConfig.Events.FeedCodes),
		Resolver:   resolve.NewResolver(builder.rowStore, finalConfig.Resolver),
		Replier:    builder.replier,
		Talk:       talk,
		Dispatcher: dispatcher,
		Ledger:     builder.ledger,
		Observer:   observer,
	})
	if err != nil {
		return nil, err
	}

	return &Gateway{
		config:         finalConfig,
		logger:         logger,
		loggerProvider: provider,
		observer:       observer,
		registry:       registry,
		dispatcher:     dispatcher,
		processor:      processor,
		relay:          relay,
		talk:           talk,
		ledger:         builder.ledger,
		commands: Commands{
			Reply: command.NewReplyCommand(builder.replier),
			React: command.NewReactCommand(talk),
			Share: command.NewShareCommand(talk),
			Write: command.NewWriteCommand(talk),
		},
	}, nil
}

func Setup(cfg core.Config, opts ...Option) (*Gateway, error) {
	return New(cfg, opts...)
}

// ledgerProvider lets repository factories expose the ledger under a
// domain-neutral method name.
type ledgerProvider interface {
	DeliveryLedger() core.DeliveryLog
}

func (g *Gateway) Config() core.Config {
	if g == nil {
		return core.Config{}
	}
	return g.config
}

// On registers a handler for a kind. Registration is meant to happen before
// the HTTP handler is mounted.
func (g *Gateway) On(kind core.EventKind, handler core.Handler) error {
	if g == nil || g.registry == nil {
		return core.Internal("chatrelay: gateway is not initialized", nil)
	}
	return g.registry.Register(kind, handler)
}

// Process runs one webhook body through the pipeline without going through
// HTTP.
func (g *Gateway) Process(ctx context.Context, body []byte) (gateway.Result, error) {
	if g == nil || g.processor == nil {
		return gateway.Result{}, core.Internal("chatrelay: gateway is not initialized", nil)
	}
	return g.processor.Process(ctx, body)
}

// HTTPHandler mounts the webhook endpoint at the configured path.
func (g *Gateway) HTTPHandler() http.Handler {
	mux := http.NewServeMux()
	if g != nil && g.processor != nil {
		mux.Handle(g.config.Webhook.Path, gateway.NewHTTPHandler(g.processor))
	}
	return mux
}

func (g *Gateway) Commands() Commands {
	if g == nil {
		return Commands{}
	}
	return g.commands
}

// Relay exposes the relay client for direct queries and replies.
func (g *Gateway) Relay() *relayapi.Client {
	if g == nil {
		return nil
	}
	return g.relay
}

// Talk exposes the privileged outbound client.
func (g *Gateway) Talk() *actions.TalkClient {
	if g == nil {
		return nil
	}
	return g.talk
}

func (g *Gateway) DeliveryLog() core.DeliveryLog {
	if g == nil {
		return nil
	}
	return g.ledger
}
