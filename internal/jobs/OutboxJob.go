package jobs

import (
	"Sigil/internal/logging"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"Sigil/internal/services/outbox"
	"Sigil/utils"
	"context"
	"fmt"

	"github.com/The127/ioc"
)

// OutboxSendingJob drains the transactional outbox. Messages are handed to
// the configured delivery service and deleted once delivery succeeded, so a
// crash in between redelivers instead of losing mail.
func OutboxSendingJob(dp *ioc.DependencyProvider) JobFn {
	return func(ctx context.Context) error {
		scope := dp.NewScope()
		defer utils.PanicOnError(scope.Close, "failed to close scope")
		ctx = middlewares.ContextWithScope(ctx, scope)

		outboxMessageRepository := ioc.GetDependency[repositories.OutboxMessageRepository](scope)
		filter := repositories.NewOutboxMessageFilter()
		outboxMessages, err := outboxMessageRepository.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list outbox messages: %w", err)
		}

		deliveryService := ioc.GetDependency[outbox.DeliveryService](scope)

		for _, message := range outboxMessages {
			err = handleMessage(ctx, message, deliveryService, outboxMessageRepository)
			if err != nil {
				logging.Logger.Errorf("failed handling message: %v", err)
			}
		}

		return nil
	}
}

func handleMessage(
	ctx context.Context,
	message *repositories.OutboxMessage,
	deliveryService outbox.DeliveryService,
	repository repositories.OutboxMessageRepository,
) error {
	err := deliveryService.Deliver(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to deliver message: %w", err)
	}

	err = repository.Delete(ctx, message.Id())
	if err != nil {
		return fmt.Errorf("failed to delete message in database: %w", err)
	}

	return nil
}
