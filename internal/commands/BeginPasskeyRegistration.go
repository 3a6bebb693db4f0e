package commands

import (
	"Sigil/internal/config"
	"Sigil/internal/jsonTypes"
	"Sigil/internal/metrics"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"Sigil/internal/services"
	"Sigil/internal/webauthn"
	"context"
	"fmt"

	"github.com/The127/ioc"
)

type BeginPasskeyRegistration struct {
	DisplayName string
}

// Anyone may start a registration ceremony. Without a session a provisional
// identity is created on the fly, logged in users add a passkey to their own
// account. Because of that we don't need to check permissions here.

type BeginPasskeyRegistrationResponse struct {
	Challenge jsonTypes.PasskeyRegistrationChallenge
}

func HandleBeginPasskeyRegistration(ctx context.Context, command BeginPasskeyRegistration) (*BeginPasskeyRegistrationResponse, error) {
	scope := middlewares.GetScope(ctx)

	userRepository := ioc.GetDependency[repositories.UserRepository](scope)

	var user *repositories.User
	if session, ok := middlewares.GetSession(ctx); ok {
		var err error
		user, err = userRepository.Single(ctx, repositories.NewUserFilter().Id(session.UserId()))
		if err != nil {
			return nil, fmt.Errorf("getting user: %w", err)
		}
	} else {
		displayName := command.DisplayName
		if displayName == "" {
			displayName = "New user"
		}

		user = repositories.NewProvisionalUser(displayName)
		err := userRepository.Insert(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("inserting provisional user: %w", err)
		}
	}

	ceremonyStateService := ioc.GetDependency[services.CeremonyStateService](scope)
	state, err := ceremonyStateService.Create(ctx, jsonTypes.CeremonyTypeRegistration)
	if err != nil {
		return nil, fmt.Errorf("creating ceremony state: %w", err)
	}

	challengeService := ioc.GetDependency[services.ChallengeService](scope)
	challenge, err := challengeService.Issue(ctx, services.ChallengePurposeRegistration, state.Id)
	if err != nil {
		return nil, fmt.Errorf("issuing challenge: %w", err)
	}

	registrationTokenService := ioc.GetDependency[services.RegistrationTokenService](scope)
	registrationToken, err := registrationTokenService.Issue(ctx, user.Id(), state.Id)
	if err != nil {
		return nil, fmt.Errorf("issuing registration token: %w", err)
	}

	metrics.CeremoniesStarted.WithLabelValues(string(jsonTypes.CeremonyTypeRegistration)).Inc()

	return &BeginPasskeyRegistrationResponse{
		Challenge: jsonTypes.PasskeyRegistrationChallenge{
			CeremonyId: state.Id,
			Challenge:  challenge,
			RelyingParty: jsonTypes.PasskeyRelyingParty{
				Id:          config.C.RelyingParty.Id,
				DisplayName: config.C.RelyingParty.DisplayName,
			},
			User: jsonTypes.PasskeyUser{
				Handle:      webauthn.Encode(user.Handle()),
				DisplayName: user.DisplayName(),
			},
			Algorithms: webauthn.SupportedAlgorithms,
			AuthenticatorSelection: jsonTypes.PasskeyAuthenticatorSelection{
				AuthenticatorAttachment: "platform",
				UserVerification:        "required",
			},
			TimeoutSeconds:    config.C.RelyingParty.CeremonyTimeoutSeconds,
			RegistrationToken: registrationToken,
		},
	}, nil
}
