package commands

import (
	"Sigil/internal/jsonTypes"
	"Sigil/internal/repositories"
	"Sigil/internal/repositories/mocks"
	"Sigil/internal/services"
	"Sigil/internal/webauthn"
	"Sigil/utils"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type FinishPasskeyRegistrationSuite struct {
	suite.Suite
}

func TestFinishPasskeyRegistrationSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(FinishPasskeyRegistrationSuite))
}

// beginRegistration drives the begin half of the ceremony through the real
// services so the finish command finds a live challenge and ceremony state.
func (s *FinishPasskeyRegistrationSuite) beginRegistration(ctx context.Context, userId uuid.UUID) (uuid.UUID, string, string) {
	state, err := services.NewCeremonyStateService().Create(ctx, jsonTypes.CeremonyTypeRegistration)
	s.Require().NoError(err)

	challenge, err := services.NewChallengeService().Issue(ctx, services.ChallengePurposeRegistration, state.Id)
	s.Require().NoError(err)

	registrationToken, err := services.NewRegistrationTokenService().Issue(ctx, userId, state.Id)
	s.Require().NoError(err)

	return state.Id, challenge, registrationToken
}

func (s *FinishPasskeyRegistrationSuite) TestHappyPath() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().Count(gomock.Any(), gomock.Cond(func(x repositories.CredentialFilter) bool {
		return x.GetUserId() == userId
	})).Return(0, nil)
	credentialRepository.EXPECT().Insert(gomock.Any(), gomock.Cond(func(x *repositories.Credential) bool {
		return x.UserId() == userId && x.SignCount() == 0
	})).Return(nil)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge, registrationToken := s.beginRegistration(ctx, userId)

	authenticator := newTestAuthenticator(s.T())
	cmd := FinishPasskeyRegistration{
		CeremonyId:        ceremonyId,
		RegistrationToken: registrationToken,
		ClientDataJSON:    webauthn.Encode(authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeCreate, challenge)),
		AttestationObject: webauthn.Encode(authenticator.attestationObject(s.T())),
	}

	// act
	resp, err := HandleFinishPasskeyRegistration(ctx, cmd)

	// assert
	s.Require().NoError(err)
	s.Equal(userId, resp.UserId)
	s.Equal(webauthn.Encode(authenticator.credentialId), resp.CredentialId)

	state, err := services.NewCeremonyStateService().Get(ctx, ceremonyId)
	s.Require().NoError(err)
	s.Equal(jsonTypes.CeremonyPhaseSuccess, state.Phase)
	s.True(state.Registered)
	s.Equal(resp.CredentialId, state.CredentialId)
}

func (s *FinishPasskeyRegistrationSuite) TestRejectsTokenForAnotherCeremony() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()

	ctx, _ := createTestContext(s.T(), testDependencies{})
	_, challenge, registrationToken := s.beginRegistration(ctx, userId)

	authenticator := newTestAuthenticator(s.T())
	cmd := FinishPasskeyRegistration{
		CeremonyId:        uuid.New(),
		RegistrationToken: registrationToken,
		ClientDataJSON:    webauthn.Encode(authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeCreate, challenge)),
		AttestationObject: webauthn.Encode(authenticator.attestationObject(s.T())),
	}

	// act
	resp, err := HandleFinishPasskeyRegistration(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, services.ErrInvalidRegistrationToken)
	s.Nil(resp)
}

func (s *FinishPasskeyRegistrationSuite) TestRejectsExpiredToken() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()

	ctx, timeSetter := createTestContext(s.T(), testDependencies{})
	ceremonyId, challenge, registrationToken := s.beginRegistration(ctx, userId)

	timeSetter(time.Now().Add(10 * time.Minute))

	authenticator := newTestAuthenticator(s.T())
	cmd := FinishPasskeyRegistration{
		CeremonyId:        ceremonyId,
		RegistrationToken: registrationToken,
		ClientDataJSON:    webauthn.Encode(authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeCreate, challenge)),
		AttestationObject: webauthn.Encode(authenticator.attestationObject(s.T())),
	}

	// act
	resp, err := HandleFinishPasskeyRegistration(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, services.ErrInvalidRegistrationToken)
	s.Nil(resp)
}

func (s *FinishPasskeyRegistrationSuite) TestRejectsWrongOrigin() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()

	ctx, _ := createTestContext(s.T(), testDependencies{})
	ceremonyId, challenge, registrationToken := s.beginRegistration(ctx, userId)

	authenticator := newTestAuthenticator(s.T())
	clientData := []byte(`{"type":"webauthn.create","challenge":"` + challenge + `","origin":"https://evil.test"}`)
	cmd := FinishPasskeyRegistration{
		CeremonyId:        ceremonyId,
		RegistrationToken: registrationToken,
		ClientDataJSON:    webauthn.Encode(clientData),
		AttestationObject: webauthn.Encode(authenticator.attestationObject(s.T())),
	}

	// act
	resp, err := HandleFinishPasskeyRegistration(ctx, cmd)

	// assert
	s.Require().Error(err)
	s.Nil(resp)

	state, stateErr := services.NewCeremonyStateService().Get(ctx, ceremonyId)
	s.Require().NoError(stateErr)
	s.Equal(jsonTypes.CeremonyPhaseError, state.Phase)
	s.False(state.Registered)
}

func (s *FinishPasskeyRegistrationSuite) TestRejectsReplayedChallenge() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	credentialRepository.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge, registrationToken := s.beginRegistration(ctx, userId)

	authenticator := newTestAuthenticator(s.T())
	cmd := FinishPasskeyRegistration{
		CeremonyId:        ceremonyId,
		RegistrationToken: registrationToken,
		ClientDataJSON:    webauthn.Encode(authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeCreate, challenge)),
		AttestationObject: webauthn.Encode(authenticator.attestationObject(s.T())),
	}

	_, err := HandleFinishPasskeyRegistration(ctx, cmd)
	s.Require().NoError(err)

	// a second ceremony trying to ride the already consumed challenge, it
	// holds its own challenge so the captured one does not match
	replayCeremonyId, _, replayToken := s.beginRegistration(ctx, userId)
	replayCmd := FinishPasskeyRegistration{
		CeremonyId:        replayCeremonyId,
		RegistrationToken: replayToken,
		ClientDataJSON:    cmd.ClientDataJSON,
		AttestationObject: cmd.AttestationObject,
	}

	// act
	resp, err := HandleFinishPasskeyRegistration(ctx, replayCmd)

	// assert
	s.Require().ErrorIs(err, services.ErrChallengeMismatch)
	s.Nil(resp)
}

func (s *FinishPasskeyRegistrationSuite) TestRejectsChallengeFromAnotherCeremony() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()

	ctx, _ := createTestContext(s.T(), testDependencies{})
	_, otherChallenge, _ := s.beginRegistration(ctx, userId)
	ceremonyId, _, registrationToken := s.beginRegistration(ctx, userId)

	authenticator := newTestAuthenticator(s.T())
	cmd := FinishPasskeyRegistration{
		CeremonyId:        ceremonyId,
		RegistrationToken: registrationToken,
		ClientDataJSON:    webauthn.Encode(authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeCreate, otherChallenge)),
		AttestationObject: webauthn.Encode(authenticator.attestationObject(s.T())),
	}

	// act
	resp, err := HandleFinishPasskeyRegistration(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, services.ErrChallengeMismatch)
	s.Nil(resp)

	state, stateErr := services.NewCeremonyStateService().Get(ctx, ceremonyId)
	s.Require().NoError(stateErr)
	s.Equal(jsonTypes.CeremonyPhaseError, state.Phase)
}

func (s *FinishPasskeyRegistrationSuite) TestRejectsMissingUserVerification() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()

	ctx, _ := createTestContext(s.T(), testDependencies{})
	ceremonyId, challenge, registrationToken := s.beginRegistration(ctx, userId)

	authenticator := newTestAuthenticator(s.T())
	cmd := FinishPasskeyRegistration{
		CeremonyId:        ceremonyId,
		RegistrationToken: registrationToken,
		ClientDataJSON:    webauthn.Encode(authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeCreate, challenge)),
		AttestationObject: webauthn.Encode(authenticator.attestationObjectWithFlags(s.T(), 0x41)),
	}

	// act
	resp, err := HandleFinishPasskeyRegistration(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, utils.ErrHttpBadRequest)
	s.Nil(resp)

	state, stateErr := services.NewCeremonyStateService().Get(ctx, ceremonyId)
	s.Require().NoError(stateErr)
	s.Equal(jsonTypes.CeremonyPhaseError, state.Phase)
	s.False(state.Registered)
}

func (s *FinishPasskeyRegistrationSuite) TestRejectsDuplicateCredentialId() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil)
	credentialRepository.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(repositories.ErrDuplicateCredential)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge, registrationToken := s.beginRegistration(ctx, userId)

	authenticator := newTestAuthenticator(s.T())
	cmd := FinishPasskeyRegistration{
		CeremonyId:        ceremonyId,
		RegistrationToken: registrationToken,
		ClientDataJSON:    webauthn.Encode(authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeCreate, challenge)),
		AttestationObject: webauthn.Encode(authenticator.attestationObject(s.T())),
	}

	// act
	resp, err := HandleFinishPasskeyRegistration(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, repositories.ErrDuplicateCredential)
	s.Nil(resp)

	state, stateErr := services.NewCeremonyStateService().Get(ctx, ceremonyId)
	s.Require().NoError(stateErr)
	s.Equal(jsonTypes.CeremonyPhaseError, state.Phase)
}

func (s *FinishPasskeyRegistrationSuite) TestRejectsCredentialLimit() {
	// arrange
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	userId := uuid.New()

	credentialRepository := mocks.NewMockCredentialRepository(ctrl)
	credentialRepository.EXPECT().Count(gomock.Any(), gomock.Any()).Return(5, nil)

	ctx, _ := createTestContext(s.T(), testDependencies{credentialRepository: credentialRepository})
	ceremonyId, challenge, registrationToken := s.beginRegistration(ctx, userId)

	authenticator := newTestAuthenticator(s.T())
	cmd := FinishPasskeyRegistration{
		CeremonyId:        ceremonyId,
		RegistrationToken: registrationToken,
		ClientDataJSON:    webauthn.Encode(authenticator.clientDataJSON(s.T(), webauthn.CeremonyTypeCreate, challenge)),
		AttestationObject: webauthn.Encode(authenticator.attestationObject(s.T())),
	}

	// act
	resp, err := HandleFinishPasskeyRegistration(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, ErrTooManyCredentials)
	s.Nil(resp)
}
