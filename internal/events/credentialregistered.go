package events

import (
	"Sigil/internal/messages"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"context"
	"fmt"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type CredentialRegisteredEvent struct {
	UserId       uuid.UUID
	CredentialId string
}

// QueueNewPasskeyMailOnCredentialRegisteredEvent notifies the account owner
// that a new passkey was added. Provisional identities have no reachable
// mailbox yet, so they are skipped.
func QueueNewPasskeyMailOnCredentialRegisteredEvent(ctx context.Context, event CredentialRegisteredEvent) error {
	scope := middlewares.GetScope(ctx)

	userRepository := ioc.GetDependency[repositories.UserRepository](scope)
	user, err := userRepository.Single(ctx, repositories.NewUserFilter().Id(event.UserId))
	if err != nil {
		return fmt.Errorf("getting user: %w", err)
	}

	if user.IsProvisional() || user.PrimaryEmail() == "" {
		return nil
	}

	message := &messages.SendEmailMessage{
		To:      user.PrimaryEmail(),
		Subject: "A new passkey was added to your account",
		Body: fmt.Sprintf(
			"Hello %s,\n\nA new passkey was just registered for your account. If this was not you, remove it immediately and contact support.",
			user.DisplayName(),
		),
	}

	outboxMessageRepository := ioc.GetDependency[repositories.OutboxMessageRepository](scope)
	err = outboxMessageRepository.Insert(ctx, repositories.NewOutboxMessage(message))
	if err != nil {
		return fmt.Errorf("inserting outbox message: %w", err)
	}

	return nil
}
