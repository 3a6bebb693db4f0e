package services

import (
	"Sigil/internal/clock"
	"Sigil/internal/config"
	"Sigil/internal/middlewares"
	"Sigil/internal/services/keyValue"
	"Sigil/utils"
	"context"
	"testing"
	"time"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func init() {
	config.C.RelyingParty.CeremonyTimeoutSeconds = 120
}

type ChallengeServiceSuite struct {
	suite.Suite
}

func TestChallengeServiceSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ChallengeServiceSuite))
}

func (s *ChallengeServiceSuite) createContext() (context.Context, clock.TimeSetterFn) {
	dc := ioc.NewDependencyCollection()

	clockService, timeSetter := clock.NewMockServiceNow()
	ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) clock.Service {
		return clockService
	})

	kvStore := keyValue.NewMemoryStore()
	ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) keyValue.Store {
		return kvStore
	})

	scope := dc.BuildProvider()
	s.T().Cleanup(func() {
		utils.PanicOnError(scope.Close, "closing scope")
	})

	return middlewares.ContextWithScope(s.T().Context(), scope), timeSetter
}

func (s *ChallengeServiceSuite) TestConsumeAcceptsIssuedChallenge() {
	// arrange
	ctx, _ := s.createContext()
	ceremonyId := uuid.New()

	challenge, err := NewChallengeService().Issue(ctx, ChallengePurposeAuthentication, ceremonyId)
	s.Require().NoError(err)

	// act
	err = NewChallengeService().Consume(ctx, ChallengePurposeAuthentication, ceremonyId, challenge)

	// assert
	s.Require().NoError(err)
}

func (s *ChallengeServiceSuite) TestConsumeIsSingleUse() {
	// arrange
	ctx, _ := s.createContext()
	ceremonyId := uuid.New()

	challenge, err := NewChallengeService().Issue(ctx, ChallengePurposeAuthentication, ceremonyId)
	s.Require().NoError(err)

	err = NewChallengeService().Consume(ctx, ChallengePurposeAuthentication, ceremonyId, challenge)
	s.Require().NoError(err)

	// act
	err = NewChallengeService().Consume(ctx, ChallengePurposeAuthentication, ceremonyId, challenge)

	// assert
	s.Require().ErrorIs(err, ErrChallengeAlreadyUsed)
}

func (s *ChallengeServiceSuite) TestConsumeRejectsChallengeOfAnotherCeremony() {
	// arrange
	ctx, _ := s.createContext()
	firstCeremonyId := uuid.New()
	secondCeremonyId := uuid.New()

	firstChallenge, err := NewChallengeService().Issue(ctx, ChallengePurposeAuthentication, firstCeremonyId)
	s.Require().NoError(err)

	secondChallenge, err := NewChallengeService().Issue(ctx, ChallengePurposeAuthentication, secondCeremonyId)
	s.Require().NoError(err)

	// act
	err = NewChallengeService().Consume(ctx, ChallengePurposeAuthentication, firstCeremonyId, secondChallenge)

	// assert
	s.Require().ErrorIs(err, ErrChallengeMismatch)

	// the first ceremony's own challenge must survive the failed attempt
	err = NewChallengeService().Consume(ctx, ChallengePurposeAuthentication, firstCeremonyId, firstChallenge)
	s.Require().NoError(err)
}

func (s *ChallengeServiceSuite) TestConsumeRejectsChallengeAcrossPurposes() {
	// arrange
	ctx, _ := s.createContext()
	ceremonyId := uuid.New()

	challenge, err := NewChallengeService().Issue(ctx, ChallengePurposeRegistration, ceremonyId)
	s.Require().NoError(err)

	// act
	err = NewChallengeService().Consume(ctx, ChallengePurposeAuthentication, ceremonyId, challenge)

	// assert
	s.Require().ErrorIs(err, ErrChallengeNotFound)
}

func (s *ChallengeServiceSuite) TestConsumeRejectsExpiredChallenge() {
	// arrange
	ctx, timeSetter := s.createContext()
	ceremonyId := uuid.New()

	challenge, err := NewChallengeService().Issue(ctx, ChallengePurposeAuthentication, ceremonyId)
	s.Require().NoError(err)

	timeSetter(time.Now().Add(3 * time.Minute))

	// act
	err = NewChallengeService().Consume(ctx, ChallengePurposeAuthentication, ceremonyId, challenge)

	// assert
	s.Require().ErrorIs(err, ErrChallengeExpired)
}

func (s *ChallengeServiceSuite) TestConsumeRejectsUnknownCeremony() {
	// arrange
	ctx, _ := s.createContext()

	// act
	err := NewChallengeService().Consume(ctx, ChallengePurposeAuthentication, uuid.New(), "whatever")

	// assert
	s.Require().ErrorIs(err, ErrChallengeNotFound)
}
