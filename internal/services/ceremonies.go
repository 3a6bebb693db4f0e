package services

import (
	"Sigil/internal/jsonTypes"
	"Sigil/internal/middlewares"
	"Sigil/internal/services/keyValue"
	"Sigil/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/The127/ioc"
	"github.com/google/uuid"
)

var (
	ErrCeremonyNotFound          = fmt.Errorf("ceremony: %w", utils.ErrHttpNotFound)
	ErrInvalidCeremonyTransition = fmt.Errorf("invalid ceremony transition: %w", utils.ErrHttpConflict)
)

// ceremonyStateRetention keeps terminal states around long enough for the
// UI to poll the outcome.
const ceremonyStateRetention = 15 * time.Minute

// CeremonyStateService tracks the client-visible phase of one ceremony
// attempt. The projection carries feedback text only, it is rehydrated from
// the credential registry for anything security relevant.
type CeremonyStateService interface {
	Create(ctx context.Context, ceremonyType jsonTypes.CeremonyType) (*jsonTypes.CeremonyState, error)
	Get(ctx context.Context, id uuid.UUID) (*jsonTypes.CeremonyState, error)
	Transition(ctx context.Context, id uuid.UUID, phase jsonTypes.CeremonyPhase, feedback string) (*jsonTypes.CeremonyState, error)
	MarkSuccess(ctx context.Context, id uuid.UUID, credentialId string, feedback string) (*jsonTypes.CeremonyState, error)
	MarkUnsupported(ctx context.Context, id uuid.UUID) (*jsonTypes.CeremonyState, error)
}

type ceremonyStateService struct {
}

func NewCeremonyStateService() CeremonyStateService {
	return &ceremonyStateService{}
}

func ceremonyStateKey(id uuid.UUID) string {
	return fmt.Sprintf("ceremony:%s", id)
}

func (s *ceremonyStateService) Create(ctx context.Context, ceremonyType jsonTypes.CeremonyType) (*jsonTypes.CeremonyState, error) {
	state := &jsonTypes.CeremonyState{
		Id:        uuid.New(),
		Type:      ceremonyType,
		Phase:     jsonTypes.CeremonyPhaseReady,
		Supported: true,
	}

	err := s.store(ctx, state)
	if err != nil {
		return nil, err
	}

	return state, nil
}

func (s *ceremonyStateService) Get(ctx context.Context, id uuid.UUID) (*jsonTypes.CeremonyState, error) {
	scope := middlewares.GetScope(ctx)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	rawState, err := kvStore.Get(ctx, ceremonyStateKey(id))
	switch {
	case errors.Is(err, keyValue.ErrNotFound):
		return nil, ErrCeremonyNotFound

	case err != nil:
		return nil, fmt.Errorf("getting ceremony state: %w", err)
	}

	var state jsonTypes.CeremonyState
	if err := json.Unmarshal([]byte(rawState), &state); err != nil {
		return nil, fmt.Errorf("unmarshalling ceremony state: %w", err)
	}

	return &state, nil
}

func (s *ceremonyStateService) Transition(ctx context.Context, id uuid.UUID, phase jsonTypes.CeremonyPhase, feedback string) (*jsonTypes.CeremonyState, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !state.Phase.CanTransitionTo(phase) {
		return nil, fmt.Errorf("phase %s to %s: %w", state.Phase, phase, ErrInvalidCeremonyTransition)
	}

	state.Phase = phase
	state.Feedback = feedback

	err = s.store(ctx, state)
	if err != nil {
		return nil, err
	}

	return state, nil
}

// MarkSuccess finishes a ceremony and records the credential id the registry
// accepted or matched.
func (s *ceremonyStateService) MarkSuccess(ctx context.Context, id uuid.UUID, credentialId string, feedback string) (*jsonTypes.CeremonyState, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !state.Phase.CanTransitionTo(jsonTypes.CeremonyPhaseSuccess) {
		return nil, fmt.Errorf("phase %s to %s: %w", state.Phase, jsonTypes.CeremonyPhaseSuccess, ErrInvalidCeremonyTransition)
	}

	state.Phase = jsonTypes.CeremonyPhaseSuccess
	state.Registered = state.Type == jsonTypes.CeremonyTypeRegistration
	state.CredentialId = credentialId
	state.Feedback = feedback

	err = s.store(ctx, state)
	if err != nil {
		return nil, err
	}

	return state, nil
}

// MarkUnsupported flags that the client reported missing passkey support.
// The UI uses this to stop offering the passkey flow for the session.
func (s *ceremonyStateService) MarkUnsupported(ctx context.Context, id uuid.UUID) (*jsonTypes.CeremonyState, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	state.Supported = false

	err = s.store(ctx, state)
	if err != nil {
		return nil, err
	}

	return state, nil
}

func (s *ceremonyStateService) store(ctx context.Context, state *jsonTypes.CeremonyState) error {
	scope := middlewares.GetScope(ctx)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	stateBytes, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling ceremony state: %w", err)
	}

	err = kvStore.Set(ctx, ceremonyStateKey(state.Id), string(stateBytes),
		keyValue.WithExpiration(ceremonyStateRetention))
	if err != nil {
		return fmt.Errorf("storing ceremony state: %w", err)
	}

	return nil
}
