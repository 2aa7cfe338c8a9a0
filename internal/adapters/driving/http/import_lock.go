package http

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/stride-sync/internal/core/domain"
)

// keepImportLock extends the import lock every lockRenew until stop is called.
// If the lock is lost, ctx is cancelled with domain.ErrLockNotHeld and the
// import halts at its next page boundary. Other Extend failures are retried
// on the next tick.
func (s *Server) keepImportLock(ctx context.Context, cancel context.CancelCauseFunc, userID, name, token string) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(s.lockRenew)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			extendCtx, cancelExtend := context.WithTimeout(context.WithoutCancel(ctx), s.lockRenew)
			err := s.importLock.Extend(extendCtx, name, token, s.lockTTL)
			cancelExtend()

			switch {
			case err == nil:
			case errors.Is(err, domain.ErrLockNotHeld):
				s.logger.Error("import lock lost, stopping import", "user_id", userID, "error", err)
				cancel(err)
				return
			default:
				s.logger.Warn("extend import lock", "user_id", userID, "error", err)
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}
