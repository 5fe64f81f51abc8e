package audit

import (
	"context"

	"github.com/rs/zerolog"
)

type actorKey struct{}

type Actor struct {
	Email    string
	TenantID string
	IP       string
}

// WithActor attaches the authenticated caller to ctx for later audit entries.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// Logger records administrative mutations as structured log events.
type Logger struct {
	log zerolog.Logger
}

func NewLogger(base zerolog.Logger) *Logger {
	return &Logger{log: base.With().Str("component", "audit").Logger()}
}

func (l *Logger) Log(ctx context.Context, action, resourceType, resourceID string, metadata map[string]interface{}) {
	ev := l.log.Info().
		Str("action", action).
		Str("resource_type", resourceType).
		Str("resource_id", resourceID)

	if actor, ok := ActorFrom(ctx); ok {
		ev = ev.Str("actor", actor.Email).Str("tenant_id", actor.TenantID).Str("ip", actor.IP)
	}
	if len(metadata) > 0 {
		ev = ev.Fields(metadata)
	}
	ev.Msg("audit")
}
