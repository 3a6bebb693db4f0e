package services

import (
	"Sigil/internal/clock"
	"Sigil/internal/config"
	"Sigil/internal/middlewares"
	"Sigil/utils"
	"context"
	"fmt"
	"time"

	"github.com/The127/ioc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidRegistrationToken = fmt.Errorf("registration token: %w", utils.ErrHttpUnauthorized)

type RegistrationTokenClaims struct {
	UserId     uuid.UUID
	CeremonyId uuid.UUID
}

// RegistrationTokenService binds the begin and finish halves of a
// registration ceremony. The begin call hands out a signed token naming the
// provisional user and the ceremony, the finish call must present it back.
type RegistrationTokenService interface {
	Issue(ctx context.Context, userId uuid.UUID, ceremonyId uuid.UUID) (string, error)
	Validate(ctx context.Context, token string) (*RegistrationTokenClaims, error)
}

type registrationTokenService struct {
}

func NewRegistrationTokenService() RegistrationTokenService {
	return &registrationTokenService{}
}

func (s *registrationTokenService) Issue(ctx context.Context, userId uuid.UUID, ceremonyId uuid.UUID) (string, error) {
	scope := middlewares.GetScope(ctx)
	clockService := ioc.GetDependency[clock.Service](scope)

	now := clockService.Now()
	window := time.Duration(config.C.RelyingParty.CeremonyTimeoutSeconds) * time.Second

	claims := jwt.RegisteredClaims{
		Issuer:    config.C.Server.ExternalUrl,
		Subject:   userId.String(),
		ID:        ceremonyId.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(window)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.C.Server.TokenSecret))
	if err != nil {
		return "", fmt.Errorf("signing registration token: %w", err)
	}

	return signed, nil
}

func (s *registrationTokenService) Validate(ctx context.Context, token string) (*RegistrationTokenClaims, error) {
	scope := middlewares.GetScope(ctx)
	clockService := ioc.GetDependency[clock.Service](scope)

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(config.C.Server.TokenSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(clockService.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing registration token: %w", ErrInvalidRegistrationToken)
	}

	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("parsing subject: %w", ErrInvalidRegistrationToken)
	}

	ceremonyId, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing ceremony id: %w", ErrInvalidRegistrationToken)
	}

	return &RegistrationTokenClaims{
		UserId:     userId,
		CeremonyId: ceremonyId,
	}, nil
}
