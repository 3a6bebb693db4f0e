package queries

import (
	"Sigil/internal/jsonTypes"
	"Sigil/internal/middlewares"
	"Sigil/internal/services"
	"context"
	"fmt"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

// GetCeremonyState is polled by the UI while the browser prompt is open.
// Ceremony ids are unguessable, so anyone holding one may read the state.

type GetCeremonyState struct {
	CeremonyId uuid.UUID
}

type GetCeremonyStateResponse struct {
	State jsonTypes.CeremonyState
}

func HandleGetCeremonyState(ctx context.Context, query GetCeremonyState) (*GetCeremonyStateResponse, error) {
	scope := middlewares.GetScope(ctx)
	ceremonyStateService := ioc.GetDependency[services.CeremonyStateService](scope)

	state, err := ceremonyStateService.Get(ctx, query.CeremonyId)
	if err != nil {
		return nil, fmt.Errorf("getting ceremony state: %w", err)
	}

	return &GetCeremonyStateResponse{
		State: *state,
	}, nil
}
