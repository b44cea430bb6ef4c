package pipeline

import (
	"context"
	"log/slog"
)

// Notifier surfaces a user-facing failure. Each failed operation calls it
// exactly once.
type Notifier interface {
	Notify(ctx context.Context, err error)
}

// LogNotifier writes notifications to the service log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, err error) {
	n.Logger.ErrorContext(ctx, "user notification", "error", err)
}
