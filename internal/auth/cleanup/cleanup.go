package cleanup

import (
	"context"
	"time"

	authrepo "github.com/inklet-app/inklet/backend/internal/auth/repository"
	"github.com/inklet-app/inklet/backend/internal/common/constants"
	"github.com/inklet-app/inklet/backend/internal/common/logger"
)

// StartRefreshTokenCleanup deletes expired refresh tokens on an interval until
// the context is cancelled.
func StartRefreshTokenCleanup(ctx context.Context, repo authrepo.RefreshTokenRepository, log *logger.Logger) {
	ticker := time.NewTicker(constants.RefreshTokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("refresh token cleanup stopped")
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Errorf("refresh token cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				log.Infof("refresh token cleanup removed %d expired tokens", deleted)
			}
		}
	}
}
