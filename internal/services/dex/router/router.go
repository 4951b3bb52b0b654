// Package router dispatches control activations to view handlers.
//
// Every call to Route ends in a reply: decode failures become a fixed
// apology, and handler failures become a message naming the view. The router
// keeps no state between events.
package router

import (
	"context"
	"fmt"
	"runtime/debug"

	apperrors "github.com/louisbranch/rowedex/internal/platform/errors"
	"github.com/louisbranch/rowedex/internal/platform/logging"
	"github.com/louisbranch/rowedex/internal/platform/requestctx"
	"github.com/louisbranch/rowedex/internal/platform/telemetry/metrics"
	"github.com/louisbranch/rowedex/internal/services/dex/controlid"
	"github.com/louisbranch/rowedex/internal/services/dex/reply"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("rowedex.dex.router")

// Handler renders one view for an entity id.
type Handler interface {
	Handle(ctx context.Context, entityID int64) (reply.Reply, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, entityID int64) (reply.Reply, error)

// Handle calls fn.
func (fn HandlerFunc) Handle(ctx context.Context, entityID int64) (reply.Reply, error) {
	return fn(ctx, entityID)
}

// State is a step of one routed event.
type State string

const (
	StateReceived      State = "received"
	StateDecoded       State = "decoded"
	StateDispatched    State = "dispatched"
	StateResponded     State = "responded"
	StateRoutingFailed State = "routing_failed"
)

// Outcome is the terminal result of Route. Reply is always populated. Err
// carries the decode or handler failure for logging; it is nil on success.
type Outcome struct {
	State   State
	Control controlid.Control
	Reply   reply.Reply
	Err     error
}

// Router maps view tokens to handlers.
type Router struct {
	handlers map[controlid.View]Handler
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New checks that handlers covers exactly the control registry.
func New(handlers map[controlid.View]Handler, logger *zap.Logger, m *metrics.Metrics) (*Router, error) {
	registry := controlid.Registry()
	for _, view := range registry {
		if h, ok := handlers[view]; !ok || h == nil {
			return nil, apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("router: no handler for view %q", view))
		}
	}
	if len(handlers) != len(registry) {
		for view := range handlers {
			if !view.Known() {
				return nil, apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("router: handler for unregistered view %q", view))
			}
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	copied := make(map[controlid.View]Handler, len(handlers))
	for view, h := range handlers {
		copied[view] = h
	}
	return &Router{handlers: copied, logger: logger, metrics: m}, nil
}

// Route decodes raw, dispatches it, and always returns a reply.
func (r *Router) Route(ctx context.Context, raw string) Outcome {
	ctx, span := tracer.Start(ctx, "dex.route")
	defer span.End()

	out := r.route(ctx, raw)

	span.SetAttributes(
		attribute.String("dex.state", string(out.State)),
		attribute.String("dex.view", string(out.Control.View)),
		attribute.Int64("dex.entity_id", out.Control.EntityID),
	)
	logger := logging.FromContext(ctx, r.logger).With(
		zap.String("control_id", raw),
		zap.String("state", string(out.State)),
	)
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(out.Err)))
		logger.Warn("control routed with error", zap.Error(out.Err))
	} else {
		logger.Debug("control routed")
	}
	r.metrics.ObserveRoute(string(out.Control.View), string(out.State))
	return out
}

func (r *Router) route(ctx context.Context, raw string) Outcome {
	locale := requestctx.LocaleFromContext(ctx)
	out := Outcome{State: StateReceived}

	control, err := controlid.Decode(raw)
	if err != nil {
		return r.failed(out, err, locale)
	}
	out.State = StateDecoded
	out.Control = control

	h, ok := r.handlers[control.View]
	if !ok {
		err := apperrors.New(apperrors.CodeControlUnknownView, fmt.Sprintf("no handler for view %q", control.View))
		return r.failed(out, err, locale)
	}
	out.State = StateDispatched

	body, err := invoke(ctx, h, control.EntityID)
	out.State = StateResponded
	if err != nil {
		out.Err = apperrors.Wrap(apperrors.CodeHandlerFailure,
			fmt.Sprintf("%s handler for %d", control.View, control.EntityID), err)
		out.Reply = reply.Reply{
			Content:   apperrors.UserMessage(handlerFailure(control.View), locale),
			Ephemeral: true,
		}
		return out
	}
	body.Ephemeral = true
	out.Reply = body
	return out
}

func (r *Router) failed(out Outcome, err error, locale string) Outcome {
	out.State = StateRoutingFailed
	out.Err = err
	out.Reply = reply.Reply{Content: apperrors.UserMessage(err, locale), Ephemeral: true}
	return out
}

func handlerFailure(view controlid.View) error {
	return apperrors.WithMetadata(apperrors.CodeHandlerFailure, "view handler failed",
		map[string]string{"View": view.Label()})
}

// invoke runs h, converting a panic into an error so the event still gets a reply.
func invoke(ctx context.Context, h Handler, entityID int64) (body reply.Reply, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic for %d: %v\n%s", entityID, rec, debug.Stack())
		}
	}()
	return h.Handle(ctx, entityID)
}
