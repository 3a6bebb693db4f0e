package services

import (
	"Sigil/internal/clock"
	"Sigil/internal/metrics"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"Sigil/internal/services/keyValue"
	"Sigil/utils"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

const (
	sessionLifetime      = time.Hour * 24 * 30
	sessionCacheLifetime = time.Minute * 15
)

type sessionService struct {
}

type sessionTokenValue struct {
	UserId       uuid.UUID `json:"userId"`
	HashedSecret string    `json:"hashedSecret"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewSessionService() middlewares.SessionService {
	return &sessionService{}
}

func (s *sessionService) NewSession(ctx context.Context, userId uuid.UUID, credentialId *uuid.UUID) (*utils.SplitToken, error) {
	scope := middlewares.GetScope(ctx)

	clockService := ioc.GetDependency[clock.Service](scope)
	now := clockService.Now()

	sessionRepository := ioc.GetDependency[repositories.SessionRepository](scope)
	session := repositories.NewSession(userId, credentialId, now.Add(sessionLifetime))
	token := session.GenerateToken()
	err := sessionRepository.Insert(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}

	metrics.SessionsIssued.Inc()

	sessionToken := utils.NewSplitToken(session.Id().String(), token)
	return &sessionToken, nil
}

func (s *sessionService) GetSession(ctx context.Context, id uuid.UUID) (*middlewares.Session, error) {
	scope := middlewares.GetScope(ctx)
	kvStore := ioc.GetDependency[keyValue.Store](scope)

	cacheKey := getSessionCacheKey(id)

	sessionValue, err := kvStore.Get(ctx, cacheKey)
	switch {
	case errors.Is(err, keyValue.ErrNotFound):
		dbSession, err := s.loadSessionFromDatabase(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading session from db: %w", err)
		}
		if dbSession == nil {
			return nil, nil
		}

		tokenValue := sessionTokenValue{
			UserId:       dbSession.UserId(),
			HashedSecret: dbSession.HashedSecret(),
			CreatedAt:    dbSession.CreatedAt(),
		}

		valueBytes, err := json.Marshal(tokenValue)
		if err != nil {
			return nil, fmt.Errorf("marshalling session: %w", err)
		}

		err = kvStore.Set(ctx, cacheKey, string(valueBytes), keyValue.WithExpiration(sessionCacheLifetime))
		if err != nil {
			return nil, fmt.Errorf("storing session token in kv: %w", err)
		}

		return dbSession, nil

	case err != nil:
		return nil, fmt.Errorf("getting session from cache: %w", err)
	}

	tokenValue := sessionTokenValue{}
	err = json.NewDecoder(bytes.NewBuffer([]byte(sessionValue))).
		Decode(&tokenValue)
	if err != nil {
		return nil, fmt.Errorf("decoding token from cache: %w", err)
	}

	return middlewares.NewSession(
		tokenValue.UserId,
		tokenValue.HashedSecret,
		tokenValue.CreatedAt,
	), nil
}

func (s *sessionService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	scope := middlewares.GetScope(ctx)

	sessionRepository := ioc.GetDependency[repositories.SessionRepository](scope)
	sessionFilter := repositories.NewSessionFilter().Id(id)
	dbSession, err := sessionRepository.First(ctx, sessionFilter)
	if err != nil {
		return fmt.Errorf("getting session from db: %w", err)
	}
	if dbSession == nil {
		return nil
	}

	kvStore := ioc.GetDependency[keyValue.Store](scope)

	err = kvStore.Delete(ctx, getSessionCacheKey(id))
	if err != nil {
		return fmt.Errorf("deleting session token from kv: %w", err)
	}

	err = sessionRepository.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}

func (s *sessionService) loadSessionFromDatabase(ctx context.Context, id uuid.UUID) (*middlewares.Session, error) {
	scope := middlewares.GetScope(ctx)

	clockService := ioc.GetDependency[clock.Service](scope)

	sessionRepository := ioc.GetDependency[repositories.SessionRepository](scope)
	sessionFilter := repositories.NewSessionFilter().Id(id)
	dbSession, err := sessionRepository.First(ctx, sessionFilter)
	if err != nil {
		return nil, fmt.Errorf("getting session from db: %w", err)
	}

	if dbSession == nil {
		return nil, nil
	}

	if dbSession.ExpiresAt().Before(clockService.Now()) {
		return nil, nil
	}

	return middlewares.NewSession(
		dbSession.UserId(),
		dbSession.HashedToken(),
		dbSession.AuditCreatedAt(),
	), nil
}

func getSessionCacheKey(sessionId uuid.UUID) string {
	return fmt.Sprintf("session:%s", sessionId)
}
