package commands

import (
	"Sigil/internal/jsonTypes"
	"Sigil/internal/metrics"
	"Sigil/internal/middlewares"
	"Sigil/internal/services"
	"context"
	"fmt"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type CeremonyFailureReason string

const (
	CeremonyFailureDeclined    CeremonyFailureReason = "declined"
	CeremonyFailureTimeout     CeremonyFailureReason = "timeout"
	CeremonyFailureUnsupported CeremonyFailureReason = "unsupported"
)

// ReportCeremonyFailure lets the client record that a ceremony ended on its
// side, for example because the user dismissed the browser prompt or the
// device has no authenticator. This only updates the presentation
// projection, nothing security relevant happens here.
type ReportCeremonyFailure struct {
	CeremonyId uuid.UUID
	Reason     CeremonyFailureReason
}

type ReportCeremonyFailureResponse struct {
	State jsonTypes.CeremonyState
}

func HandleReportCeremonyFailure(ctx context.Context, command ReportCeremonyFailure) (*ReportCeremonyFailureResponse, error) {
	scope := middlewares.GetScope(ctx)
	ceremonyStateService := ioc.GetDependency[services.CeremonyStateService](scope)

	state, err := ceremonyStateService.Get(ctx, command.CeremonyId)
	if err != nil {
		return nil, fmt.Errorf("getting ceremony state: %w", err)
	}

	// A decline can arrive while the ceremony is still in its ready phase.
	// Step it through the matching active phase so the transition rules hold.
	if state.Phase == jsonTypes.CeremonyPhaseReady {
		activePhase := jsonTypes.CeremonyPhaseRegistering
		if state.Type == jsonTypes.CeremonyTypeAuthentication {
			activePhase = jsonTypes.CeremonyPhaseAuthenticating
		}

		state, err = ceremonyStateService.Transition(ctx, command.CeremonyId, activePhase, "")
		if err != nil {
			return nil, fmt.Errorf("transitioning ceremony state: %w", err)
		}
	}

	state, err = ceremonyStateService.Transition(ctx, command.CeremonyId, jsonTypes.CeremonyPhaseError, string(command.Reason))
	if err != nil {
		return nil, fmt.Errorf("transitioning ceremony state: %w", err)
	}

	if command.Reason == CeremonyFailureUnsupported {
		state, err = ceremonyStateService.MarkUnsupported(ctx, command.CeremonyId)
		if err != nil {
			return nil, fmt.Errorf("marking ceremony unsupported: %w", err)
		}
	}

	metrics.CeremoniesFailed.WithLabelValues(string(state.Type)).Inc()

	return &ReportCeremonyFailureResponse{
		State: *state,
	}, nil
}
