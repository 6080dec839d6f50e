package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-chatrelay/actions"
	"github.com/goliatone/go-chatrelay/core"
	"github.com/goliatone/go-chatrelay/dispatch"
	"github.com/goliatone/go-chatrelay/payload"
	"github.com/goliatone/go-chatrelay/resolve"
)

// Delivery ledger terminal statuses.
const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Deps collects the collaborators a Processor needs. Classifier, Resolver,
// and Dispatcher are required; the rest degrade gracefully when absent.
type Deps struct {
	Classifier *payload.Classifier
	Resolver   *resolve.Resolver
	Replier    core.Replier
	Talk       *actions.TalkClient
	Dispatcher *dispatch.Dispatcher
	Ledger     core.DeliveryLog
	Observer   core.Observer
}

// Processor runs the full per-request pipeline: decode, normalize, classify,
// resolve, bind the action surface, record, and dispatch.
type Processor struct {
	cfg        core.Config
	classifier *payload.Classifier
	resolver   *resolve.Resolver
	replier    core.Replier
	talk       *actions.TalkClient
	dispatcher *dispatch.Dispatcher
	ledger     core.DeliveryLog
	observer   core.Observer
	newID      func() string
}

func NewProcessor(cfg core.Config, deps Deps) (*Processor, error) {
	if deps.Classifier == nil {
		return nil, core.Internal("gateway: processor requires a classifier", nil)
	}
	if deps.Resolver == nil {
		return nil, core.Internal("gateway: processor requires a resolver", nil)
	}
	if deps.Dispatcher == nil {
		return nil, core.Internal("gateway: processor requires a dispatcher", nil)
	}
	return &Processor{
		cfg:        cfg,
		classifier: deps.Classifier,
		resolver:   deps.Resolver,
		replier:    deps.Replier,
		talk:       deps.Talk,
		dispatcher: deps.Dispatcher,
		ledger:     deps.Ledger,
		observer:   deps.Observer,
		newID:      uuid.NewString,
	}, nil
}

// Result is the terminal outcome of one delivery. Kind is KindNone when the
// notification matched no recognized discriminator and was skipped.
type Result struct {
	DeliveryID string
	Kind       core.EventKind
	Dispatched bool
}

// Process handles one inbound webhook body to completion. Decode and lookup
// failures abort dispatch, surface to the caller, and are offered to the
// error-kind handlers; handler failures never propagate here.
func (p *Processor) Process(ctx context.Context, body []byte) (Result, error) {
	if p == nil {
		return Result{}, core.Internal("gateway: processor is nil", nil)
	}
	startedAt := time.Now()
	result, err := p.process(ctx, body)
	p.observer.ObserveOperation(ctx, startedAt, "process_webhook", err, map[string]any{
		"delivery_id": result.DeliveryID,
		"kind":        string(result.Kind),
	})
	return result, err
}

func (p *Processor) process(ctx context.Context, body []byte) (Result, error) {
	result := Result{DeliveryID: p.newID()}

	raw, err := payload.Decode(body)
	if err != nil {
		p.record(ctx, result.DeliveryID, core.KindNone, StatusFailed, body)
		p.emitFailure(ctx, err, core.KindNone, raw)
		return result, err
	}
	raw = payload.Normalize(raw)

	kind := p.classifier.Classify(raw)
	if kind == core.KindNone {
		p.record(ctx, result.DeliveryID, core.KindNone, StatusSkipped, body)
		return result, nil
	}
	result.Kind = kind

	entities, err := p.resolver.Resolve(ctx, raw)
	if err != nil {
		p.record(ctx, result.DeliveryID, kind, StatusFailed, body)
		p.emitFailure(ctx, err, kind, raw)
		return result, err
	}

	ids := resolve.ExtractIdentifiers(raw)
	evt := &core.EventContext{
		Kind:    kind,
		Raw:     raw,
		User:    entities.User,
		Channel: entities.Channel,
		Message: entities.Message,
		Actions: actions.Bind(p.replier, p.talk, ids.ChannelID, ids.MessageID, entities.Channel),
	}

	p.record(ctx, result.DeliveryID, kind, StatusProcessed, body)

	if err := p.dispatcher.Emit(ctx, core.KindAll, evt); err != nil {
		return result, err
	}
	if err := p.dispatcher.Emit(ctx, kind, evt); err != nil {
		return result, err
	}
	result.Dispatched = true
	return result, nil
}

// emitFailure offers a pipeline failure to the error-kind handlers. The
// original error has already been surfaced to the caller, so emission
// problems are only logged.
func (p *Processor) emitFailure(ctx context.Context, cause error, sourceKind core.EventKind, raw core.RawNotification) {
	evt := &core.EventContext{
		Kind: core.KindError,
		Raw:  raw,
		Failure: &core.Failure{
			Err:        cause,
			SourceKind: sourceKind,
			Raw:        raw,
		},
	}
	if err := p.dispatcher.Emit(ctx, core.KindError, evt); err != nil {
		p.observer.LogError(ctx, "error emission failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// record appends to the delivery ledger when one is configured. The ledger is
// bookkeeping only and must never affect the delivery outcome.
func (p *Processor) record(ctx context.Context, deliveryID string, kind core.EventKind, status string, body []byte) {
	if p.ledger == nil {
		return
	}
	entry := core.DeliveryEntry{
		DeliveryID: deliveryID,
		Kind:       kind,
		Status:     status,
		Payload:    body,
	}
	if err := p.ledger.Record(ctx, entry); err != nil {
		p.observer.LogError(ctx, "delivery ledger record failed", map[string]any{
			"delivery_id": deliveryID,
			"status":      status,
			"error":       err.Error(),
		})
	}
}
