package jobs

import (
	"Sigil/internal/clock"
	"Sigil/internal/logging"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"Sigil/utils"
	"context"
	"fmt"

	"github.com/The127/ioc"
)

// SessionCleanupJob removes expired session rows. The session cache entries
// fall out of the kv store on their own, this only keeps the table small.
func SessionCleanupJob(dp *ioc.DependencyProvider) JobFn {
	return func(ctx context.Context) error {
		scope := dp.NewScope()
		defer utils.PanicOnError(scope.Close, "failed to close scope")
		ctx = middlewares.ContextWithScope(ctx, scope)

		clockService := ioc.GetDependency[clock.Service](scope)
		sessionRepository := ioc.GetDependency[repositories.SessionRepository](scope)

		deleted, err := sessionRepository.DeleteExpired(ctx, clockService.Now())
		if err != nil {
			return fmt.Errorf("failed to delete expired sessions: %w", err)
		}

		if deleted > 0 {
			logging.Logger.Infof("deleted %d expired sessions", deleted)
		}

		return nil
	}
}
