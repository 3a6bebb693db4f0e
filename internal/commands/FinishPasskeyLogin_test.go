package commands

import (
	"Sigil/internal/jsonTypes"
	"Sigil/internal/repositories"
	"Sigil/internal/repositories/mocks"
	"Sigil/internal/services"
	"Sigil/internal/webauthn"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type FinishPasskeyLoginSuite struct {
	suite.Suite
}

func TestFinishPasskeyLoginSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(FinishPasskeyLoginSuite))
}

func (s *FinishPasskeyLoginSuite) beginLogin(ctx context.Context) (uuid.UUID, string) {
	state, err := services.NewCeremonyStateService().Create(ctx, jsonTypes.CeremonyTypeAuthentication)
	s.Require().NoError(err)

	challenge, err := services.NewChallengeService().Issue(ctx, services.ChallengePurposeAuthentication, state.Id)
	s.Require().NoError(err)

	return state.Id, challenge
}

// registeredCredential builds the credential row that registration would
// have produced for the given authenticator.
func (s *FinishPasskeyLoginSuite) registeredCredential(userId uuid.UUID, authenticator *testAuthenticator, signCount uint32) *repositories.Credential {
	coseKey, err := webauthn.ParseCOSEKey(authenticator.coseKey(s.T()))
	s.Require().NoError(err)

	credential := repositories.NewCredential(
		userId,
		webauthn.Encode(authenticator.credentialId),
		coseKey.DER,
		coseKey.Algorithm,
		signCount,
	)
	return credential
}

func (s *FinishPasskeyLoginSuite) TestHappyPath() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()
	authenticator := newTestAuthenticator(s.T())
	credential := s.registeredCredential(userId, authenticator, 0)

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().First(gomock.Any(), gomock.Cond(func(x repositories.CredentialFilter) bool {
		return x.GetCredentialId() == webauthn.Encode(authenticator.credentialId)
	})).Return(credential, nil)
	credentialRepository.EXPECT().Update(gomock.Any(), gomock.Cond(func(x *repositories.Credential) bool {
		return x.SignCount() == 1 && x.LastUsedAt() != nil
	})).Return(nil)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge := s.beginLogin(ctx)

	clientDataJSON := authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeGet, challenge)
	authData, signature := authenticator.assert(s.T(), clientDataJSON)

	cmd := FinishPasskeyLogin{
		CeremonyId:        ceremonyId,
		CredentialId:      webauthn.Encode(authenticator.credentialId),
		ClientDataJSON:    webauthn.Encode(clientDataJSON),
		AuthenticatorData: webauthn.Encode(authData),
		Signature:         webauthn.Encode(signature),
	}

	// act
	resp, err := HandleFinishPasskeyLogin(ctx, cmd)

	// assert
	s.Require().NoError(err)
	s.Equal(userId, resp.UserId)
	s.Equal(credential.Id(), resp.CredentialId)

	state, err := services.NewCeremonyStateService().Get(ctx, ceremonyId)
	s.Require().NoError(err)
	s.Equal(jsonTypes.CeremonyPhaseSuccess, state.Phase)
}

func (s *FinishPasskeyLoginSuite) TestUnknownCredentialFailsGenerically() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	authenticator := newTestAuthenticator(s.T())

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().First(gomock.Any(), gomock.Any()).Return(nil, nil)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge := s.beginLogin(ctx)

	clientDataJSON := authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeGet, challenge)
	authData, signature := authenticator.assert(s.T(), clientDataJSON)

	cmd := FinishPasskeyLogin{
		CeremonyId:        ceremonyId,
		CredentialId:      webauthn.Encode([]byte("unknown")),
		ClientDataJSON:    webauthn.Encode(clientDataJSON),
		AuthenticatorData: webauthn.Encode(authData),
		Signature:         webauthn.Encode(signature),
	}

	// act
	resp, err := HandleFinishPasskeyLogin(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, ErrAuthenticationFailed)
	s.Nil(resp)
}

func (s *FinishPasskeyLoginSuite) TestTamperedSignatureFailsGenerically() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()
	authenticator := newTestAuthenticator(s.T())
	credential := s.registeredCredential(userId, authenticator, 0)

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().First(gomock.Any(), gomock.Any()).Return(credential, nil)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge := s.beginLogin(ctx)

	clientDataJSON := authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeGet, challenge)
	authData, signature := authenticator.assert(s.T(), clientDataJSON)
	signature[len(signature)-1] ^= 0xff

	cmd := FinishPasskeyLogin{
		CeremonyId:        ceremonyId,
		CredentialId:      webauthn.Encode(authenticator.credentialId),
		ClientDataJSON:    webauthn.Encode(clientDataJSON),
		AuthenticatorData: webauthn.Encode(authData),
		Signature:         webauthn.Encode(signature),
	}

	// act
	resp, err := HandleFinishPasskeyLogin(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, ErrAuthenticationFailed)
	s.Nil(resp)

	state, stateErr := services.NewCeremonyStateService().Get(ctx, ceremonyId)
	s.Require().NoError(stateErr)
	s.Equal(jsonTypes.CeremonyPhaseError, state.Phase)
	s.Equal("authentication failed", state.Feedback)
}

func (s *FinishPasskeyLoginSuite) TestReplayedAssertionFailsGenerically() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()
	authenticator := newTestAuthenticator(s.T())
	credential := s.registeredCredential(userId, authenticator, 0)

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().First(gomock.Any(), gomock.Any()).Return(credential, nil)
	credentialRepository.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge := s.beginLogin(ctx)

	clientDataJSON := authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeGet, challenge)
	authData, signature := authenticator.assert(s.T(), clientDataJSON)

	cmd := FinishPasskeyLogin{
		CeremonyId:        ceremonyId,
		CredentialId:      webauthn.Encode(authenticator.credentialId),
		ClientDataJSON:    webauthn.Encode(clientDataJSON),
		AuthenticatorData: webauthn.Encode(authData),
		Signature:         webauthn.Encode(signature),
	}

	_, err := HandleFinishPasskeyLogin(ctx, cmd)
	s.Require().NoError(err)

	// replaying the captured assertion against a fresh ceremony
	replayCeremonyId, _ := s.beginLogin(ctx)
	replayCmd := cmd
	replayCmd.CeremonyId = replayCeremonyId

	// act
	resp, err := HandleFinishPasskeyLogin(ctx, replayCmd)

	// assert
	s.Require().ErrorIs(err, ErrAuthenticationFailed)
	s.Nil(resp)
}

func (s *FinishPasskeyLoginSuite) TestChallengeFromAnotherCeremonyFailsGenerically() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	authenticator := newTestAuthenticator(s.T())

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	_, otherChallenge := s.beginLogin(ctx)
	ceremonyId, _ := s.beginLogin(ctx)

	// the assertion answers the first ceremony's challenge but is handed in
	// for the second one
	clientDataJSON := authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeGet, otherChallenge)
	authData, signature := authenticator.assert(s.T(), clientDataJSON)

	cmd := FinishPasskeyLogin{
		CeremonyId:        ceremonyId,
		CredentialId:      webauthn.Encode(authenticator.credentialId),
		ClientDataJSON:    webauthn.Encode(clientDataJSON),
		AuthenticatorData: webauthn.Encode(authData),
		Signature:         webauthn.Encode(signature),
	}

	// act
	resp, err := HandleFinishPasskeyLogin(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, ErrAuthenticationFailed)
	s.Nil(resp)

	state, stateErr := services.NewCeremonyStateService().Get(ctx, ceremonyId)
	s.Require().NoError(stateErr)
	s.Equal(jsonTypes.CeremonyPhaseError, state.Phase)
}

func (s *FinishPasskeyLoginSuite) TestMissingUserVerificationFailsGenerically() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()
	authenticator := newTestAuthenticator(s.T())
	credential := s.registeredCredential(userId, authenticator, 0)

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().First(gomock.Any(), gomock.Any()).Return(credential, nil)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge := s.beginLogin(ctx)

	clientDataJSON := authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeGet, challenge)
	authData, signature := authenticator.assertWithFlags(s.T(), clientDataJSON, 0x01)

	cmd := FinishPasskeyLogin{
		CeremonyId:        ceremonyId,
		CredentialId:      webauthn.Encode(authenticator.credentialId),
		ClientDataJSON:    webauthn.Encode(clientDataJSON),
		AuthenticatorData: webauthn.Encode(authData),
		Signature:         webauthn.Encode(signature),
	}

	// act
	resp, err := HandleFinishPasskeyLogin(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, ErrAuthenticationFailed)
	s.Nil(resp)

	state, stateErr := services.NewCeremonyStateService().Get(ctx, ceremonyId)
	s.Require().NoError(stateErr)
	s.Equal(jsonTypes.CeremonyPhaseError, state.Phase)
	s.Equal("authentication failed", state.Feedback)
}

func (s *FinishPasskeyLoginSuite) TestCounterRegressionFailsGenerically() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()
	authenticator := newTestAuthenticator(s.T())

	// The stored counter is ahead of the authenticator, as it would be
	// after an assertion from a cloned device.
	credential := s.registeredCredential(userId, authenticator, 10)

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().First(gomock.Any(), gomock.Any()).Return(credential, nil)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge := s.beginLogin(ctx)

	clientDataJSON := authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeGet, challenge)
	authData, signature := authenticator.assert(s.T(), clientDataJSON)

	cmd := FinishPasskeyLogin{
		CeremonyId:        ceremonyId,
		CredentialId:      webauthn.Encode(authenticator.credentialId),
		ClientDataJSON:    webauthn.Encode(clientDataJSON),
		AuthenticatorData: webauthn.Encode(authData),
		Signature:         webauthn.Encode(signature),
	}

	// act
	resp, err := HandleFinishPasskeyLogin(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, ErrAuthenticationFailed)
	s.NotErrorIs(err, repositories.ErrCounterRegression)
	s.Nil(resp)

	// the stored counter must not move on a rejected assertion
	s.Equal(int64(10), credential.SignCount())
}
