package commands

import (
	"Sigil/internal/behaviours"
	"Sigil/internal/events"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/google/uuid"
)

type RemovePasskey struct {
	UserId    uuid.UUID
	PasskeyId uuid.UUID
}

func (c RemovePasskey) IsAllowed(ctx context.Context) (behaviours.PolicyResult, error) {
	session, ok := middlewares.GetSession(ctx)
	if !ok {
		return behaviours.Denied(uuid.Nil), nil
	}

	if session.UserId() != c.UserId {
		return behaviours.Denied(session.UserId()), nil
	}

	return behaviours.Allowed(session.UserId(), behaviours.NewAllowedByOwnership()), nil
}

func (c RemovePasskey) GetRequestName() string {
	return "RemovePasskey"
}

type RemovePasskeyResponse struct{}

func HandleRemovePasskey(ctx context.Context, command RemovePasskey) (*RemovePasskeyResponse, error) {
	scope := middlewares.GetScope(ctx)
	credentialRepository := ioc.GetDependency[repositories.CredentialRepository](scope)

	credentialFilter := repositories.NewCredentialFilter().
		Id(command.PasskeyId).
		UserId(command.UserId)
	credential, err := credentialRepository.Single(ctx, credentialFilter)
	if err != nil {
		return nil, fmt.Errorf("getting credential: %w", err)
	}

	err = credentialRepository.Delete(ctx, credential.Id())
	if err != nil {
		return nil, fmt.Errorf("deleting credential: %w", err)
	}

	m := ioc.GetDependency[mediatr.Mediator](scope)
	err = mediatr.SendEvent(ctx, m, events.CredentialRemovedEvent{
		UserId:       command.UserId,
		CredentialId: credential.CredentialId(),
	})
	if err != nil {
		return nil, fmt.Errorf("raising event: %w", err)
	}

	return &RemovePasskeyResponse{}, nil
}
