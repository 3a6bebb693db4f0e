package events

import (
	"Sigil/internal/logging"
	"context"

	"github.com/google/uuid"
)

type CredentialRemovedEvent struct {
	UserId       uuid.UUID
	CredentialId string
}

func LogCredentialRemovedEvent(ctx context.Context, event CredentialRemovedEvent) error {
	logging.Logger.Infow("passkey removed",
		"userId", event.UserId,
		"credentialId", event.CredentialId,
	)

	return nil
}
