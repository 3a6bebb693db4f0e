package events

import (
	"Sigil/internal/config"
	"Sigil/internal/logging"
	"Sigil/internal/messages"
	"Sigil/internal/metrics"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"context"
	"fmt"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

// CounterRegressionDetectedEvent fires when an assertion carried a sign
// counter that did not increase, which indicates a cloned authenticator.
type CounterRegressionDetectedEvent struct {
	UserId        uuid.UUID
	CredentialId  string
	StoredCount   int64
	AssertedCount uint32
}

func AlertOnCounterRegressionDetectedEvent(ctx context.Context, event CounterRegressionDetectedEvent) error {
	logging.Logger.Warnw("sign counter regression detected",
		"userId", event.UserId,
		"credentialId", event.CredentialId,
		"storedCount", event.StoredCount,
		"assertedCount", event.AssertedCount,
	)

	metrics.CounterRegressions.Inc()

	if config.C.Alerts.SecurityEmail == "" {
		return nil
	}

	message := &messages.SendEmailMessage{
		To:      config.C.Alerts.SecurityEmail,
		Subject: "Possible cloned passkey detected",
		Body: fmt.Sprintf(
			"Credential %s of user %s presented sign counter %d, stored counter is %d.\nThe authentication attempt was rejected.",
			event.CredentialId,
			event.UserId,
			event.AssertedCount,
			event.StoredCount,
		),
	}

	scope := middlewares.GetScope(ctx)
	outboxMessageRepository := ioc.GetDependency[repositories.OutboxMessageRepository](scope)
	err := outboxMessageRepository.Insert(ctx, repositories.NewOutboxMessage(message))
	if err != nil {
		return fmt.Errorf("inserting outbox message: %w", err)
	}

	return nil
}
