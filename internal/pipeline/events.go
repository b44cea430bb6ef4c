package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
)

// publishEvent is best-effort: a nil publisher disables events and failures
// are only logged.
func publishEvent(ctx context.Context, events EventPublisher, logger *slog.Logger, eventType string, g domain.Gem) {
	if events == nil {
		return
	}
	if err := events.Publish(context.WithoutCancel(ctx), domain.NewGemEvent(eventType, g)); err != nil {
		logger.Warn("publish event failed", "type", eventType, "gem_id", g.ID, "error", err)
	}
}
