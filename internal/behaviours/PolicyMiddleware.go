package behaviours

import (
	"Sigil/internal/middlewares"
	"Sigil/utils"
	"context"
	"fmt"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"
	"github.com/google/uuid"
)

type AuditLogger interface {
	Log(ctx context.Context, policy Policy, result PolicyResult) error
}

type PolicyResult struct {
	allowed bool
	userId  uuid.UUID
	reason  AllowReason
}

func (p PolicyResult) IsAllowed() bool {
	return p.allowed
}

func (p PolicyResult) UserId() uuid.UUID {
	return p.userId
}

func (p PolicyResult) Reason() AllowReason {
	return p.reason
}

type AllowReason interface {
	ImplementsAllowReason()
}

// AllowedByAnyone marks requests that need no session, like starting a
// login ceremony.
type AllowedByAnyone struct{}

func NewAllowedByAnyone() AllowedByAnyone {
	return AllowedByAnyone{}
}

func (a AllowedByAnyone) String() string {
	return "Anyone"
}

func (a AllowedByAnyone) ImplementsAllowReason() {}

// AllowedByOwnership marks requests a user makes against their own
// resources, like listing or removing their passkeys.
type AllowedByOwnership struct{}

func NewAllowedByOwnership() AllowedByOwnership {
	return AllowedByOwnership{}
}

func (a AllowedByOwnership) String() string {
	return "Ownership"
}

func (a AllowedByOwnership) ImplementsAllowReason() {}

// AllowedByCeremonyToken marks finish-registration requests that present a
// valid registration token instead of a session.
type AllowedByCeremonyToken struct{}

func NewAllowedByCeremonyToken() AllowedByCeremonyToken {
	return AllowedByCeremonyToken{}
}

func (a AllowedByCeremonyToken) String() string {
	return "CeremonyToken"
}

func (a AllowedByCeremonyToken) ImplementsAllowReason() {}

func Allowed(userId uuid.UUID, reason AllowReason) PolicyResult {
	return PolicyResult{
		allowed: true,
		userId:  userId,
		reason:  reason,
	}
}

func Denied(userId uuid.UUID) PolicyResult {
	return PolicyResult{
		allowed: false,
		userId:  userId,
	}
}

type Policy interface {
	IsAllowed(ctx context.Context) (PolicyResult, error)
	GetRequestName() string
}

func PolicyBehaviour(ctx context.Context, request Policy, next mediatr.Next) (any, error) {
	policyResult, err := request.IsAllowed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check if request is allowed: %w", err)
	}

	scope := middlewares.GetScope(ctx)
	auditLogger := ioc.GetDependency[AuditLogger](scope)
	err = auditLogger.Log(ctx, request, policyResult)
	if err != nil {
		return nil, fmt.Errorf("failed to log request: %w", err)
	}

	if !policyResult.allowed {
		return nil, fmt.Errorf("request not allowed: %w", utils.ErrHttpUnauthorized)
	}

	return next()
}
