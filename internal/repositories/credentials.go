package repositories

import (
	"Sigil/utils"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateCredential maps the unique constraint on credential_id.
	// Credential ids are globally unique because authentication looks them
	// up without a user hint.
	ErrDuplicateCredential = fmt.Errorf("credential id already registered: %w", utils.ErrHttpConflict)

	// ErrCounterRegression signals a sign counter that did not increase,
	// which points at a cloned authenticator.
	ErrCounterRegression = errors.New("sign counter regression")
)

type Credential struct {
	ModelBase

	userId uuid.UUID

	// credentialId is the authenticator-chosen id in base64url form.
	credentialId string

	publicKey          []byte
	publicKeyAlgorithm int

	signCount  int64
	lastUsedAt *time.Time
}

func NewCredential(userId uuid.UUID, credentialId string, publicKey []byte, publicKeyAlgorithm int, signCount uint32) *Credential {
	return &Credential{
		ModelBase:          NewModelBase(),
		userId:             userId,
		credentialId:       credentialId,
		publicKey:          publicKey,
		publicKeyAlgorithm: publicKeyAlgorithm,
		signCount:          int64(signCount),
	}
}

func (c *Credential) GetScanPointers() []any {
	return []any{
		&c.id,
		&c.auditCreatedAt,
		&c.auditUpdatedAt,
		&c.version,
		&c.userId,
		&c.credentialId,
		&c.publicKey,
		&c.publicKeyAlgorithm,
		&c.signCount,
		&c.lastUsedAt,
	}
}

func (c *Credential) UserId() uuid.UUID {
	return c.userId
}

func (c *Credential) CredentialId() string {
	return c.credentialId
}

func (c *Credential) PublicKey() []byte {
	return c.publicKey
}

func (c *Credential) PublicKeyAlgorithm() int {
	return c.publicKeyAlgorithm
}

func (c *Credential) SignCount() int64 {
	return c.signCount
}

// CounterSupported reports whether the authenticator maintains a sign
// counter. Authenticators without counter support always report zero.
func (c *Credential) CounterSupported() bool {
	return c.signCount > 0
}

// AdvanceSignCount applies the counter from a freshly verified assertion.
// The counter must strictly increase. A stored and reported value of zero
// means the authenticator does not keep counters, in which case the check
// is skipped. Any other non-increasing value fails with
// ErrCounterRegression and leaves the stored counter untouched.
func (c *Credential) AdvanceSignCount(newCount uint32) error {
	if newCount == 0 && c.signCount == 0 {
		return nil
	}

	if int64(newCount) <= c.signCount {
		return fmt.Errorf("stored counter %d, asserted counter %d: %w", c.signCount, newCount, ErrCounterRegression)
	}

	c.signCount = int64(newCount)
	c.TrackChange("sign_count", c.signCount)
	return nil
}

func (c *Credential) LastUsedAt() *time.Time {
	return c.lastUsedAt
}

func (c *Credential) SetLastUsedAt(lastUsedAt time.Time) {
	c.lastUsedAt = &lastUsedAt
	c.TrackChange("last_used_at", &lastUsedAt)
}

type CredentialFilter struct {
	id           *uuid.UUID
	userId       *uuid.UUID
	credentialId *string
}

func NewCredentialFilter() CredentialFilter {
	return CredentialFilter{}
}

func (f CredentialFilter) Clone() CredentialFilter {
	return f
}

func (f CredentialFilter) Id(id uuid.UUID) CredentialFilter {
	filter := f.Clone()
	filter.id = &id
	return filter
}

func (f CredentialFilter) HasId() bool {
	return f.id != nil
}

func (f CredentialFilter) GetId() uuid.UUID {
	return utils.ZeroIfNil(f.id)
}

func (f CredentialFilter) UserId(userId uuid.UUID) CredentialFilter {
	filter := f.Clone()
	filter.userId = &userId
	return filter
}

func (f CredentialFilter) HasUserId() bool {
	return f.userId != nil
}

func (f CredentialFilter) GetUserId() uuid.UUID {
	return utils.ZeroIfNil(f.userId)
}

func (f CredentialFilter) CredentialId(credentialId string) CredentialFilter {
	filter := f.Clone()
	filter.credentialId = &credentialId
	return filter
}

func (f CredentialFilter) HasCredentialId() bool {
	return f.credentialId != nil
}

func (f CredentialFilter) GetCredentialId() string {
	return utils.ZeroIfNil(f.credentialId)
}

//go:generate mockgen -destination=./mocks/credential_repository.go -package=mocks Sigil/internal/repositories CredentialRepository
type CredentialRepository interface {
	Single(ctx context.Context, filter CredentialFilter) (*Credential, error)
	First(ctx context.Context, filter CredentialFilter) (*Credential, error)
	List(ctx context.Context, filter CredentialFilter) ([]*Credential, error)
	Count(ctx context.Context, filter CredentialFilter) (int, error)
	Insert(ctx context.Context, credential *Credential) error
	Update(ctx context.Context, credential *Credential) error
	Delete(ctx context.Context, id uuid.UUID) error
}
