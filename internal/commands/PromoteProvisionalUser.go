package commands

import (
	"Sigil/internal/behaviours"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"context"
	"fmt"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type PromoteProvisionalUser struct {
	UserId       uuid.UUID
	DisplayName  string
	PrimaryEmail string
}

func (c PromoteProvisionalUser) IsAllowed(ctx context.Context) (behaviours.PolicyResult, error) {
	session, ok := middlewares.GetSession(ctx)
	if !ok {
		return behaviours.Denied(uuid.Nil), nil
	}

	if session.UserId() != c.UserId {
		return behaviours.Denied(session.UserId()), nil
	}

	return behaviours.Allowed(session.UserId(), behaviours.NewAllowedByOwnership()), nil
}

func (c PromoteProvisionalUser) GetRequestName() string {
	return "PromoteProvisionalUser"
}

type PromoteProvisionalUserResponse struct {
	Id uuid.UUID
}

func HandlePromoteProvisionalUser(ctx context.Context, command PromoteProvisionalUser) (*PromoteProvisionalUserResponse, error) {
	scope := middlewares.GetScope(ctx)
	userRepository := ioc.GetDependency[repositories.UserRepository](scope)

	user, err := userRepository.Single(ctx, repositories.NewUserFilter().Id(command.UserId))
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	user.Promote(command.DisplayName, command.PrimaryEmail)

	err = userRepository.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return &PromoteProvisionalUserResponse{
		Id: user.Id(),
	}, nil
}
