package services

import (
	"Sigil/internal/clock"
	"Sigil/internal/config"
	"Sigil/internal/middlewares"
	"Sigil/internal/services/keyValue"
	"Sigil/internal/webauthn"
	"Sigil/utils"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/The127/ioc"
	"github.com/google/uuid"
)

type ChallengePurpose string

const (
	ChallengePurposeRegistration   ChallengePurpose = "registration"
	ChallengePurposeAuthentication ChallengePurpose = "authentication"
)

var (
	ErrChallengeNotFound    = fmt.Errorf("challenge not found: %w", utils.ErrHttpBadRequest)
	ErrChallengeExpired     = fmt.Errorf("challenge expired: %w", utils.ErrHttpBadRequest)
	ErrChallengeAlreadyUsed = fmt.Errorf("challenge already used: %w", utils.ErrHttpBadRequest)
	ErrChallengeMismatch    = fmt.Errorf("challenge issued for another ceremony: %w", utils.ErrHttpBadRequest)
)

const (
	challengeByteLength = 32

	// usedMarkerRetention keeps a tombstone after consumption so a replay
	// within this window is reported as reuse instead of an unknown
	// challenge.
	usedMarkerRetention = 5 * time.Minute

	usedChallengeMarker = "used"
)

// ChallengeService issues single-use random challenges, each bound to one
// ceremony instance and a short validity window. Consumption is atomic and
// compares the presented value against the one issued for that ceremony, a
// challenge can never verify any other ceremony.
type ChallengeService interface {
	Issue(ctx context.Context, purpose ChallengePurpose, ceremonyId uuid.UUID) (string, error)
	Consume(ctx context.Context, purpose ChallengePurpose, ceremonyId uuid.UUID, challenge string) error
}

type challengeValue struct {
	Challenge string    `json:"challenge"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type challengeService struct {
}

func NewChallengeService() ChallengeService {
	return &challengeService{}
}

func challengeKey(purpose ChallengePurpose, ceremonyId uuid.UUID) string {
	return fmt.Sprintf("challenge:%s:%s", purpose, ceremonyId)
}

func (s *challengeService) Issue(ctx context.Context, purpose ChallengePurpose, ceremonyId uuid.UUID) (string, error) {
	scope := middlewares.GetScope(ctx)
	clockService := ioc.GetDependency[clock.Service](scope)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	challenge := webauthn.Encode(utils.GetSecureRandomBytes(challengeByteLength))

	window := time.Duration(config.C.RelyingParty.CeremonyTimeoutSeconds) * time.Second
	value := challengeValue{
		Challenge: challenge,
		ExpiresAt: clockService.Now().Add(window),
	}

	valueBytes, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("marshalling challenge value: %w", err)
	}

	// The kv entry outlives the validity window so a late consume attempt
	// is reported as expired rather than unknown.
	err = kvStore.Set(ctx, challengeKey(purpose, ceremonyId), string(valueBytes),
		keyValue.WithExpiration(window+usedMarkerRetention))
	if err != nil {
		return "", fmt.Errorf("storing challenge: %w", err)
	}

	return challenge, nil
}

func (s *challengeService) Consume(ctx context.Context, purpose ChallengePurpose, ceremonyId uuid.UUID, challenge string) error {
	scope := middlewares.GetScope(ctx)
	clockService := ioc.GetDependency[clock.Service](scope)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	key := challengeKey(purpose, ceremonyId)

	rawValue, err := kvStore.Take(ctx, key)
	switch {
	case errors.Is(err, keyValue.ErrNotFound):
		return ErrChallengeNotFound

	case err != nil:
		return fmt.Errorf("taking challenge: %w", err)
	}

	if rawValue == usedChallengeMarker {
		// Put the tombstone back so further replays keep reporting reuse.
		_ = kvStore.Set(ctx, key, usedChallengeMarker, keyValue.WithExpiration(usedMarkerRetention))
		return ErrChallengeAlreadyUsed
	}

	var value challengeValue
	if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
		return fmt.Errorf("unmarshalling challenge value: %w", err)
	}

	if clockService.Now().After(value.ExpiresAt) {
		return ErrChallengeExpired
	}

	if subtle.ConstantTimeCompare([]byte(value.Challenge), []byte(challenge)) != 1 {
		// The issued challenge stays stored, presenting the wrong value
		// must not burn the ceremony's real one.
		remaining := value.ExpiresAt.Sub(clockService.Now()) + usedMarkerRetention
		_ = kvStore.Set(ctx, key, rawValue, keyValue.WithExpiration(remaining))
		return ErrChallengeMismatch
	}

	err = kvStore.Set(ctx, key, usedChallengeMarker, keyValue.WithExpiration(usedMarkerRetention))
	if err != nil {
		return fmt.Errorf("marking challenge as used: %w", err)
	}

	return nil
}
