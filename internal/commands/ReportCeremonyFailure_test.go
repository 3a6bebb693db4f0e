package commands

import (
	"Sigil/internal/jsonTypes"
	"Sigil/internal/services"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ReportCeremonyFailureSuite struct {
	suite.Suite
}

func TestReportCeremonyFailureSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ReportCeremonyFailureSuite))
}

func (s *ReportCeremonyFailureSuite) TestDeclineFromReadyPhase() {
	// arrange
	ctx, _ := createTestContext(s.T(), testDependencies{})

	state, err := services.NewCeremonyStateService().Create(ctx, jsonTypes.CeremonyTypeRegistration)
	s.Require().NoError(err)

	cmd := ReportCeremonyFailure{
		CeremonyId: state.Id,
		Reason:     CeremonyFailureDeclined,
	}

	// act
	resp, err := HandleReportCeremonyFailure(ctx, cmd)

	// assert
	s.Require().NoError(err)
	s.Equal(jsonTypes.CeremonyPhaseError, resp.State.Phase)
	s.Equal("declined", resp.State.Feedback)
	s.True(resp.State.Supported)
}

func (s *ReportCeremonyFailureSuite) TestUnsupportedClearsSupportFlag() {
	// arrange
	ctx, _ := createTestContext(s.T(), testDependencies{})

	state, err := services.NewCeremonyStateService().Create(ctx, jsonTypes.CeremonyTypeAuthentication)
	s.Require().NoError(err)

	cmd := ReportCeremonyFailure{
		CeremonyId: state.Id,
		Reason:     CeremonyFailureUnsupported,
	}

	// act
	resp, err := HandleReportCeremonyFailure(ctx, cmd)

	// assert
	s.Require().NoError(err)
	s.Equal(jsonTypes.CeremonyPhaseError, resp.State.Phase)
	s.False(resp.State.Supported)
}

func (s *ReportCeremonyFailureSuite) TestUnknownCeremony() {
	// arrange
	ctx, _ := createTestContext(s.T(), testDependencies{})

	cmd := ReportCeremonyFailure{
		CeremonyId: uuid.New(),
		Reason:     CeremonyFailureTimeout,
	}

	// act
	resp, err := HandleReportCeremonyFailure(ctx, cmd)

	// assert
	s.Require().ErrorIs(err, services.ErrCeremonyNotFound)
	s.Nil(resp)
}
