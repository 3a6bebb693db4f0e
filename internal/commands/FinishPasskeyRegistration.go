package commands

import (
	"Sigil/internal/behaviours"
	"Sigil/internal/config"
	"Sigil/internal/events"
	"Sigil/internal/jsonTypes"
	"Sigil/internal/logging"
	"Sigil/internal/metrics"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"Sigil/internal/services"
	"Sigil/internal/webauthn"
	"Sigil/utils"
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/google/uuid"
)

var ErrTooManyCredentials = fmt.Errorf("credential limit reached: %w", utils.ErrHttpConflict)

type FinishPasskeyRegistration struct {
	CeremonyId        uuid.UUID
	RegistrationToken string

	// ClientDataJSON and AttestationObject are base64url encoded, exactly
	// as the browser credential api hands them out.
	ClientDataJSON    string
	AttestationObject string
}

func (c FinishPasskeyRegistration) IsAllowed(ctx context.Context) (behaviours.PolicyResult, error) {
	scope := middlewares.GetScope(ctx)
	registrationTokenService := ioc.GetDependency[services.RegistrationTokenService](scope)

	claims, err := registrationTokenService.Validate(ctx, c.RegistrationToken)
	if err != nil {
		return behaviours.Denied(uuid.Nil), nil
	}

	if claims.CeremonyId != c.CeremonyId {
		return behaviours.Denied(claims.UserId), nil
	}

	return behaviours.Allowed(claims.UserId, behaviours.NewAllowedByCeremonyToken()), nil
}

func (c FinishPasskeyRegistration) GetRequestName() string {
	return "FinishPasskeyRegistration"
}

type FinishPasskeyRegistrationResponse struct {
	UserId       uuid.UUID
	CredentialId string
}

func HandleFinishPasskeyRegistration(ctx context.Context, command FinishPasskeyRegistration) (*FinishPasskeyRegistrationResponse, error) {
	scope := middlewares.GetScope(ctx)

	registrationTokenService := ioc.GetDependency[services.RegistrationTokenService](scope)
	claims, err := registrationTokenService.Validate(ctx, command.RegistrationToken)
	if err != nil {
		return nil, fmt.Errorf("validating registration token: %w", err)
	}

	if claims.CeremonyId != command.CeremonyId {
		return nil, fmt.Errorf("token bound to another ceremony: %w", services.ErrInvalidRegistrationToken)
	}

	ceremonyStateService := ioc.GetDependency[services.CeremonyStateService](scope)
	_, err = ceremonyStateService.Transition(ctx, command.CeremonyId, jsonTypes.CeremonyPhaseRegistering, "")
	if err != nil {
		return nil, fmt.Errorf("transitioning ceremony state: %w", err)
	}

	clientDataBytes, err := webauthn.Decode(command.ClientDataJSON)
	if err != nil {
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}

	clientData, err := webauthn.DecodeClientData(clientDataBytes)
	if err != nil {
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}

	if clientData.Type != webauthn.CeremonyTypeCreate {
		err = fmt.Errorf("client data type %q: %w", clientData.Type, webauthn.ErrMalformedCeremonyData)
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}

	if !slices.Contains(config.C.RelyingParty.Origins, clientData.Origin) {
		err = fmt.Errorf("origin %q not allowed: %w", clientData.Origin, utils.ErrHttpBadRequest)
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}

	challengeService := ioc.GetDependency[services.ChallengeService](scope)
	err = challengeService.Consume(ctx, services.ChallengePurposeRegistration, command.CeremonyId, clientData.Challenge)
	if err != nil {
		return nil, failRegistration(ctx, command.CeremonyId, fmt.Errorf("consuming challenge: %w", err))
	}

	attestationBytes, err := webauthn.Decode(command.AttestationObject)
	if err != nil {
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}

	authData, err := webauthn.ParseAttestationObject(attestationBytes)
	if err != nil {
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}

	if !bytes.Equal(authData.RpIdHash, webauthn.RelyingPartyIdHash(config.C.RelyingParty.Id)) {
		err = fmt.Errorf("rpIdHash mismatch: %w", webauthn.ErrMalformedCeremonyData)
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}

	if !authData.Flags.UserPresent() {
		err = fmt.Errorf("user presence not asserted: %w", webauthn.ErrMalformedCeremonyData)
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}

	// Registration parameters demand user verification, accepting a UV=0
	// response would silently weaken the credential.
	if !authData.Flags.UserVerified() {
		err = fmt.Errorf("user verification not asserted: %w", utils.ErrHttpBadRequest)
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}

	credentialRepository := ioc.GetDependency[repositories.CredentialRepository](scope)

	count, err := credentialRepository.Count(ctx, repositories.NewCredentialFilter().UserId(claims.UserId))
	if err != nil {
		return nil, fmt.Errorf("counting credentials: %w", err)
	}

	if count >= config.C.RelyingParty.MaxCredentialsPerUser {
		return nil, failRegistration(ctx, command.CeremonyId, ErrTooManyCredentials)
	}

	credentialId := webauthn.Encode(authData.CredentialId)
	credential := repositories.NewCredential(
		claims.UserId,
		credentialId,
		authData.PublicKey.DER,
		authData.PublicKey.Algorithm,
		authData.SignCount,
	)

	err = credentialRepository.Insert(ctx, credential)
	if errors.Is(err, repositories.ErrDuplicateCredential) {
		return nil, failRegistration(ctx, command.CeremonyId, err)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting credential: %w", err)
	}

	_, err = ceremonyStateService.MarkSuccess(ctx, command.CeremonyId, credentialId, "passkey registered")
	if err != nil {
		return nil, fmt.Errorf("finishing ceremony state: %w", err)
	}

	metrics.CeremoniesCompleted.WithLabelValues(string(jsonTypes.CeremonyTypeRegistration)).Inc()

	m := ioc.GetDependency[mediatr.Mediator](scope)
	err = mediatr.SendEvent(ctx, m, events.CredentialRegisteredEvent{
		UserId:       claims.UserId,
		CredentialId: credentialId,
	})
	if err != nil {
		return nil, fmt.Errorf("raising event: %w", err)
	}

	return &FinishPasskeyRegistrationResponse{
		UserId:       claims.UserId,
		CredentialId: credentialId,
	}, nil
}

// failRegistration records the failed outcome in the ceremony projection and
// hands the original error back to the caller.
func failRegistration(ctx context.Context, ceremonyId uuid.UUID, cause error) error {
	scope := middlewares.GetScope(ctx)
	ceremonyStateService := ioc.GetDependency[services.CeremonyStateService](scope)

	_, err := ceremonyStateService.Transition(ctx, ceremonyId, jsonTypes.CeremonyPhaseError, "registration failed")
	if err != nil {
		logging.Logger.Warnf("recording ceremony failure: %v", err)
	}

	metrics.CeremoniesFailed.WithLabelValues(string(jsonTypes.CeremonyTypeRegistration)).Inc()

	return cause
}
