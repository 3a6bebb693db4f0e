package queries

import (
	"Sigil/internal/behaviours"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"Sigil/utils"
	"context"
	"fmt"
	"time"

	"github.com/The127/ioc"

	"github.com/google/uuid"
)

type ListPasskeys struct {
	UserId uuid.UUID
}

func (q ListPasskeys) IsAllowed(ctx context.Context) (behaviours.PolicyResult, error) {
	session, ok := middlewares.GetSession(ctx)
	if !ok {
		return behaviours.Denied(uuid.Nil), nil
	}

	if session.UserId() != q.UserId {
		return behaviours.Denied(session.UserId()), nil
	}

	return behaviours.Allowed(session.UserId(), behaviours.NewAllowedByOwnership()), nil
}

func (q ListPasskeys) GetRequestName() string {
	return "ListPasskeys"
}

type ListPasskeysResponse struct {
	PagedResponse[ListPasskeysResponseItem]
}

type ListPasskeysResponseItem struct {
	Id           uuid.UUID
	CredentialId string
	Algorithm    int
	CreatedAt    time.Time
	LastUsedAt   *time.Time
}

func HandleListPasskeys(ctx context.Context, query ListPasskeys) (*ListPasskeysResponse, error) {
	scope := middlewares.GetScope(ctx)
	credentialRepository := ioc.GetDependency[repositories.CredentialRepository](scope)

	credentialFilter := repositories.NewCredentialFilter().UserId(query.UserId)
	credentials, err := credentialRepository.List(ctx, credentialFilter)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}

	items := utils.MapSlice(credentials, func(c *repositories.Credential) ListPasskeysResponseItem {
		return ListPasskeysResponseItem{
			Id:           c.Id(),
			CredentialId: c.CredentialId(),
			Algorithm:    c.PublicKeyAlgorithm(),
			CreatedAt:    c.AuditCreatedAt(),
			LastUsedAt:   c.LastUsedAt(),
		}
	})

	return &ListPasskeysResponse{
		PagedResponse: NewPagedResponse(items, len(credentials)),
	}, nil
}
