package commands

import (
	"Sigil/internal/clock"
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

// ErrAuthenticationFailed is the only error a failed login ever surfaces.
// The precise cause is logged but never handed to the caller, an attacker
// probing credential ids must not learn which check tripped.
var ErrAuthenticationFailed = fmt.Errorf("authentication failed: %w", utils.ErrHttpUnauthorized)

type FinishPasskeyLogin struct {
	CeremonyId uuid.UUID

	// CredentialId and the response fields are base64url encoded, exactly
	// as the browser credential api hands them out.
	CredentialId      string
	ClientDataJSON    string
	AuthenticatorData string
	Signature         string
}

// The assertion itself is the authentication, so there is no permission
// check on top.

type FinishPasskeyLoginResponse struct {
	UserId       uuid.UUID
	CredentialId uuid.UUID
}

func HandleFinishPasskeyLogin(ctx context.Context, command FinishPasskeyLogin) (*FinishPasskeyLoginResponse, error) {
	scope := middlewares.GetScope(ctx)

	ceremonyStateService := ioc.GetDependency[services.CeremonyStateService](scope)
	_, err := ceremonyStateService.Transition(ctx, command.CeremonyId, jsonTypes.CeremonyPhaseAuthenticating, "")
	if err != nil {
		return nil, fmt.Errorf("transitioning ceremony state: %w", err)
	}

	clientDataBytes, err := webauthn.Decode(command.ClientDataJSON)
	if err != nil {
		return nil, failAuthentication(ctx, command.CeremonyId, "malformed client data", err)
	}

	clientData, err := webauthn.DecodeClientData(clientDataBytes)
	if err != nil {
		return nil, failAuthentication(ctx, command.CeremonyId, "malformed client data", err)
	}

	if clientData.Type != webauthn.CeremonyTypeGet {
		err = fmt.Errorf("client data type %q", clientData.Type)
		return nil, failAuthentication(ctx, command.CeremonyId, "wrong ceremony type", err)
	}

	if !slices.Contains(config.C.RelyingParty.Origins, clientData.Origin) {
		err = fmt.Errorf("origin %q", clientData.Origin)
		return nil, failAuthentication(ctx, command.CeremonyId, "origin not allowed", err)
	}

	challengeService := ioc.GetDependency[services.ChallengeService](scope)
	err = challengeService.Consume(ctx, services.ChallengePurposeAuthentication, command.CeremonyId, clientData.Challenge)
	if err != nil {
		return nil, failAuthentication(ctx, command.CeremonyId, "challenge rejected", err)
	}

	credentialRepository := ioc.GetDependency[repositories.CredentialRepository](scope)
	credential, err := credentialRepository.First(ctx,
		repositories.NewCredentialFilter().CredentialId(command.CredentialId))
	if err != nil && !errors.Is(err, utils.ErrResourceNotFound) {
		return nil, fmt.Errorf("getting credential: %w", err)
	}

	if credential == nil {
		err = fmt.Errorf("credential id %q", command.CredentialId)
		return nil, failAuthentication(ctx, command.CeremonyId, "unknown credential", err)
	}

	authDataBytes, err := webauthn.Decode(command.AuthenticatorData)
	if err != nil {
		return nil, failAuthentication(ctx, command.CeremonyId, "malformed authenticator data", err)
	}

	authData, err := webauthn.ParseAuthenticatorData(authDataBytes)
	if err != nil {
		return nil, failAuthentication(ctx, command.CeremonyId, "malformed authenticator data", err)
	}

	if !bytes.Equal(authData.RpIdHash, webauthn.RelyingPartyIdHash(config.C.RelyingParty.Id)) {
		return nil, failAuthentication(ctx, command.CeremonyId, "rpIdHash mismatch", errors.New("assertion for another relying party"))
	}

	if !authData.Flags.UserPresent() {
		return nil, failAuthentication(ctx, command.CeremonyId, "user presence not asserted", errors.New("UP flag not set"))
	}

	if !authData.Flags.UserVerified() {
		return nil, failAuthentication(ctx, command.CeremonyId, "user verification not asserted", errors.New("UV flag not set"))
	}

	signatureBytes, err := webauthn.Decode(command.Signature)
	if err != nil {
		return nil, failAuthentication(ctx, command.CeremonyId, "malformed signature", err)
	}

	err = webauthn.VerifySignature(
		credential.PublicKey(),
		credential.PublicKeyAlgorithm(),
		webauthn.SignedPayload(authDataBytes, clientDataBytes),
		signatureBytes,
	)
	if err != nil {
		return nil, failAuthentication(ctx, command.CeremonyId, "signature verification failed", err)
	}

	err = credential.AdvanceSignCount(authData.SignCount)
	if errors.Is(err, repositories.ErrCounterRegression) {
		m := ioc.GetDependency[mediatr.Mediator](scope)
		eventErr := mediatr.SendEvent(ctx, m, events.CounterRegressionDetectedEvent{
			UserId:        credential.UserId(),
			CredentialId:  credential.CredentialId(),
			StoredCount:   credential.SignCount(),
			AssertedCount: authData.SignCount,
		})
		if eventErr != nil {
			return nil, fmt.Errorf("raising event: %w", eventErr)
		}

		return nil, failAuthentication(ctx, command.CeremonyId, "sign counter regression", err)
	}
	if err != nil {
		return nil, fmt.Errorf("advancing sign counter: %w", err)
	}

	if !credential.CounterSupported() {
		logging.Logger.Debugw("authenticator reports no sign counter, regression check skipped",
			"credentialId", credential.CredentialId())
	}

	clockService := ioc.GetDependency[clock.Service](scope)
	credential.SetLastUsedAt(clockService.Now())

	err = credentialRepository.Update(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("updating credential: %w", err)
	}

	_, err = ceremonyStateService.MarkSuccess(ctx, command.CeremonyId, credential.CredentialId(), "authenticated")
	if err != nil {
		return nil, fmt.Errorf("finishing ceremony state: %w", err)
	}

	metrics.CeremoniesCompleted.WithLabelValues(string(jsonTypes.CeremonyTypeAuthentication)).Inc()

	return &FinishPasskeyLoginResponse{
		UserId:       credential.UserId(),
		CredentialId: credential.Id(),
	}, nil
}

// failAuthentication logs the precise cause, records the failed outcome in
// the ceremony projection and collapses everything into the one generic
// authentication error.
func failAuthentication(ctx context.Context, ceremonyId uuid.UUID, reason string, cause error) error {
	logging.Logger.Warnw("passkey authentication failed",
		"ceremonyId", ceremonyId,
		"reason", reason,
		"cause", cause,
	)

	scope := middlewares.GetScope(ctx)
	ceremonyStateService := ioc.GetDependency[services.CeremonyStateService](scope)

	_, err := ceremonyStateService.Transition(ctx, ceremonyId, jsonTypes.CeremonyPhaseError, "authentication failed")
	if err != nil {
		logging.Logger.Warnf("recording ceremony failure: %v", err)
	}

	metrics.CeremoniesFailed.WithLabelValues(string(jsonTypes.CeremonyTypeAuthentication)).Inc()

	return ErrAuthenticationFailed
}
