package commands

import (
	"Sigil/internal/config"
	"Sigil/internal/jsonTypes"
	"Sigil/internal/metrics"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"Sigil/internal/services"
	"Sigil/utils"
	"context"
	"errors"
	"fmt"

	"github.com/The127/ioc"
)

type BeginPasskeyLogin struct {
	// PrimaryEmail is optional. When set and known, the allow-list in the
	// challenge is narrowed to that user's credentials. Unknown addresses
	// are indistinguishable from known ones without discoverable passkeys.
	PrimaryEmail string
}

// Starting a login ceremony is the one thing an anonymous visitor is here
// for, so there is no permission check.

type BeginPasskeyLoginResponse struct {
	Challenge jsonTypes.PasskeyLoginChallenge
}

func HandleBeginPasskeyLogin(ctx context.Context, command BeginPasskeyLogin) (*BeginPasskeyLoginResponse, error) {
	scope := middlewares.GetScope(ctx)

	ceremonyStateService := ioc.GetDependency[services.CeremonyStateService](scope)
	state, err := ceremonyStateService.Create(ctx, jsonTypes.CeremonyTypeAuthentication)
	if err != nil {
		return nil, fmt.Errorf("creating ceremony state: %w", err)
	}

	challengeService := ioc.GetDependency[services.ChallengeService](scope)
	challenge, err := challengeService.Issue(ctx, services.ChallengePurposeAuthentication, state.Id)
	if err != nil {
		return nil, fmt.Errorf("issuing challenge: %w", err)
	}

	var allowedCredentialIds []string
	if command.PrimaryEmail != "" {
		allowedCredentialIds, err = credentialIdsForEmail(ctx, command.PrimaryEmail)
		if err != nil {
			return nil, err
		}
	}

	metrics.CeremoniesStarted.WithLabelValues(string(jsonTypes.CeremonyTypeAuthentication)).Inc()

	return &BeginPasskeyLoginResponse{
		Challenge: jsonTypes.PasskeyLoginChallenge{
			CeremonyId:           state.Id,
			Challenge:            challenge,
			RelyingPartyId:       config.C.RelyingParty.Id,
			UserVerification:     "required",
			TimeoutSeconds:       config.C.RelyingParty.CeremonyTimeoutSeconds,
			AllowedCredentialIds: allowedCredentialIds,
		},
	}, nil
}

func credentialIdsForEmail(ctx context.Context, primaryEmail string) ([]string, error) {
	scope := middlewares.GetScope(ctx)

	userRepository := ioc.GetDependency[repositories.UserRepository](scope)
	user, err := userRepository.First(ctx, repositories.NewUserFilter().PrimaryEmail(primaryEmail))
	switch {
	case errors.Is(err, utils.ErrResourceNotFound):
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("getting user: %w", err)

	case user == nil:
		return nil, nil
	}

	credentialRepository := ioc.GetDependency[repositories.CredentialRepository](scope)
	credentials, err := credentialRepository.List(ctx, repositories.NewCredentialFilter().UserId(user.Id()))
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}

	return utils.MapSlice(credentials, func(c *repositories.Credential) string {
		return c.CredentialId()
	}), nil
}
