package cleanup

import (
	"context"
	"time"

	"github.com/myhoard/backend/internal/common/constants"
	"github.com/myhoard/backend/internal/common/logger"
	"github.com/myhoard/backend/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// StartTokenCleanup sweeps physically expired token records on a fixed
// interval. Reads already treat expired records as absent, so the sweep is
// housekeeping, not a correctness requirement.
func StartTokenCleanup(ctx context.Context, store ExpiredDeleter, log *logger.Logger) {
	ticker := time.NewTicker(constants.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.DeleteExpired(ctx)
			if err != nil {
				log.Errorf("token cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				metrics.TokensCleanupDeleted.Add(float64(deleted))
				log.Infof("token cleanup: deleted %d expired tokens", deleted)
			}
		}
	}
}
