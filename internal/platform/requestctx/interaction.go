// Package requestctx carries per-event metadata through a context so handlers
// never consult process-wide state.
package requestctx

import (
	"context"

	"github.com/google/uuid"
)

// Interaction describes the inbound event being handled.
type Interaction struct {
	RequestID string
	Kind      string
	UserID    string
	GuildID   string
	// Locale is the client locale, such as "en-US".
	Locale string
}

type interactionContextKey struct{}

// WithInteraction stores interaction metadata in context, assigning a request
// id when the caller did not supply one.
func WithInteraction(ctx context.Context, in Interaction) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if in.RequestID == "" {
		in.RequestID = uuid.NewString()
	}
	return context.WithValue(ctx, interactionContextKey{}, in)
}

// InteractionFromContext returns the interaction stored in context.
func InteractionFromContext(ctx context.Context) (Interaction, bool) {
	if ctx == nil {
		return Interaction{}, false
	}
	value, ok := ctx.Value(interactionContextKey{}).(Interaction)
	return value, ok
}

// RequestIDFromContext returns the request id stored in context, or "".
func RequestIDFromContext(ctx context.Context) string {
	in, _ := InteractionFromContext(ctx)
	return in.RequestID
}

// UserIDFromContext returns the invoking user id stored in context, or "".
func UserIDFromContext(ctx context.Context) string {
	in, _ := InteractionFromContext(ctx)
	return in.UserID
}

// LocaleFromContext returns the client locale stored in context, or "".
func LocaleFromContext(ctx context.Context) string {
	in, _ := InteractionFromContext(ctx)
	return in.Locale
}
