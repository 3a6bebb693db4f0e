package middlewares

import (
	"Sigil/internal/config"
	"Sigil/utils"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const SessionCookieName = "sigilSession"

type CurrentSession struct {
	userId    uuid.UUID
	sessionId uuid.UUID
}

func NewCurrentSession(userId uuid.UUID, sessionId uuid.UUID) CurrentSession {
	return CurrentSession{
		userId:    userId,
		sessionId: sessionId,
	}
}

func (s *CurrentSession) UserId() uuid.UUID {
	return s.userId
}

func (s *CurrentSession) SessionId() uuid.UUID {
	return s.sessionId
}

type currentSessionCtxKeyType string

const (
	currentSessionCtxKey currentSessionCtxKeyType = "currentSessionCtxKey"
)

func SessionMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			scope := GetScope(ctx)

			sessionCookie, err := r.Cookie(SessionCookieName)
			switch {
			case errors.Is(err, http.ErrNoCookie):
				next.ServeHTTP(w, r)
				return

			case err != nil:
				utils.HandleHttpError(w, fmt.Errorf("getting session cookie: %w", err))
				return
			}

			token, err := utils.DecodeSplitToken(sessionCookie.Value)
			if err != nil {
				utils.HandleHttpError(w, fmt.Errorf("decoding split token: %w", err))
				return
			}

			tokenId, err := uuid.Parse(token.Id())
			if err != nil {
				utils.HandleHttpError(w, fmt.Errorf("decoding token id: %w", err))
				return
			}

			sessionService := ioc.GetDependency[SessionService](scope)
			session, err := sessionService.GetSession(ctx, tokenId)
			if err != nil {
				utils.HandleHttpError(w, fmt.Errorf("getting session: %w", err))
				return
			}

			if session == nil {
				next.ServeHTTP(w, r)
				return
			}

			if utils.CheapCompareHash(token.Secret(), session.HashedSecret()) {
				currentSession := CurrentSession{
					userId:    session.userId,
					sessionId: tokenId,
				}
				r = r.WithContext(ContextWithSession(r.Context(), currentSession))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ContextWithSession(ctx context.Context, session CurrentSession) context.Context {
	return context.WithValue(ctx, currentSessionCtxKey, session)
}

func GetSession(ctx context.Context) (CurrentSession, bool) {
	value, ok := ctx.Value(currentSessionCtxKey).(CurrentSession)
	return value, ok
}

func DeleteSession(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	scope := GetScope(ctx)

	s, ok := GetSession(ctx)
	if !ok {
		return nil
	}

	sessionService := ioc.GetDependency[SessionService](scope)
	err := sessionService.DeleteSession(ctx, s.SessionId())
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	setCookie(w, SessionCookieName, "", -1)

	return nil
}

func CreateSession(w http.ResponseWriter, r *http.Request, userId uuid.UUID, credentialId *uuid.UUID) error {
	ctx := r.Context()
	scope := GetScope(ctx)

	sessionService := ioc.GetDependency[SessionService](scope)
	sessionToken, err := sessionService.NewSession(ctx, userId, credentialId)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	maxAge := int((24 * 14 * time.Hour).Seconds())
	setCookie(w, SessionCookieName, sessionToken.Encode(), maxAge)

	return nil
}

func setCookie(w http.ResponseWriter, name string, value string, maxAge int) {
	cookie := http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   config.C.Server.ExternalUrl,
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
}
