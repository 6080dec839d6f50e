package dispatch

import (
	"context"

	"github.com/goliatone/go-chatrelay/core"
)

// Dispatcher invokes the handlers registered for a kind, isolating each
// handler's failure from its siblings and from the HTTP caller.
type Dispatcher struct {
	registry *Registry
	observer core.Observer
}

func NewDispatcher(registry *Registry, observer core.Observer) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		observer: observer,
	}
}

// Emit runs every handler in the kind's snapshot sequentially, awaiting each
// before starting the next. A failing handler outside the error kind
// produces exactly one error-kind emission carrying the source kind and raw
// notification; a failing error-kind handler is logged and dropped.
func (d *Dispatcher) Emit(ctx context.Context, kind core.EventKind, evt *core.EventContext) error {
	if d == nil || d.registry == nil {
		return core.Internal("dispatch: dispatcher requires a registry", nil)
	}
	if evt == nil {
		return core.Internal("dispatch: event context is nil", map[string]any{"kind": string(kind)})
	}
	for _, handler := range d.registry.Snapshot(kind) {
		err := invoke(ctx, handler, evt)
		if err == nil {
			continue
		}
		if kind == core.KindError {
			d.observer.LogError(ctx, "error handler failed, dropping to prevent recursion", map[string]any{
				"error": err.Error(),
			})
			continue
		}
		d.observer.LogError(ctx, "handler failed, converting to error emission", map[string]any{
			"kind":  string(kind),
			"error": err.Error(),
		})
		failure := &core.EventContext{
			Kind: core.KindError,
			Raw:  evt.Raw,
			Failure: &core.Failure{
				Err:        core.HandlerFailure(err, kind),
				SourceKind: kind,
				Raw:        evt.Raw,
			},
		}
		if emitErr := d.Emit(ctx, core.KindError, failure); emitErr != nil {
			return emitErr
		}
	}
	return nil
}

// invoke isolates a single handler call, turning a panic into an ordinary
// handler failure so one bad handler cannot take down the request.
func invoke(ctx context.Context, handler core.Handler, evt *core.EventContext) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = core.Internal("dispatch: handler panicked", map[string]any{
				"panic": recovered,
			})
		}
	}()
	return handler(ctx, evt)
}
