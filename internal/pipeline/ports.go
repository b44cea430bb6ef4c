// Package pipeline loads, enriches and accepts hidden gems. All record
// mutation goes through store.GemStore; lookups are best-effort and never
// fail an operation.
package pipeline

import (
	"context"

	"github.com/couchcryptid/hidden-gems-service/internal/domain"
)

// GemLister fetches the persisted gem list.
type GemLister interface {
	ListGems(ctx context.Context) ([]domain.RawGem, error)
}

// GemCreator persists a new gem and returns it as the list would.
type GemCreator interface {
	CreateGem(ctx context.Context, g domain.NewGem) (domain.RawGem, error)
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, img domain.ImageFile) (string, error)
}

// Authenticator reports whether the caller in ctx is signed in.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// EventPublisher emits gem change events.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.GemEvent) error
}
