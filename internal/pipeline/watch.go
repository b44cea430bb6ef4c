package pipeline

import (
	"context"

	"github.com/couchcryptid/hidden-gems-service/internal/observability"
	"github.com/couchcryptid/hidden-gems-service/internal/store"
)

// WatchStore keeps the gems gauge in step with every store mutation,
// including prepends between list loads. It returns when ctx is done.
func WatchStore(ctx context.Context, st *store.GemStore, metrics *observability.Metrics) {
	updates := st.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-updates:
			metrics.GemsLoaded.Set(float64(len(snap)))
		}
	}
}
