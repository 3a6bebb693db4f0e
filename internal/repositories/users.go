package repositories

import (
	"Sigil/utils"
	"context"

	"github.com/google/uuid"
)

type User struct {
	ModelBase

	displayName  string
	primaryEmail string

	// provisional marks identities created by a fingerprint-first
	// registration ceremony that have not been promoted to a full account.
	provisional bool
}

func NewUser(displayName string, primaryEmail string) *User {
	return &User{
		ModelBase:    NewModelBase(),
		displayName:  displayName,
		primaryEmail: primaryEmail,
	}
}

func NewProvisionalUser(displayName string) *User {
	return &User{
		ModelBase:   NewModelBase(),
		displayName: displayName,
		provisional: true,
	}
}

func (m *User) GetScanPointers() []any {
	return []any{
		&m.id,
		&m.auditCreatedAt,
		&m.auditUpdatedAt,
		&m.version,
		&m.displayName,
		&m.primaryEmail,
		&m.provisional,
	}
}

func (m *User) DisplayName() string {
	return m.displayName
}

func (m *User) SetDisplayName(displayName string) {
	if m.displayName == displayName {
		return
	}

	m.displayName = displayName
	m.TrackChange("display_name", displayName)
}

func (m *User) PrimaryEmail() string {
	return m.primaryEmail
}

func (m *User) SetPrimaryEmail(primaryEmail string) {
	if m.primaryEmail == primaryEmail {
		return
	}

	m.primaryEmail = primaryEmail
	m.TrackChange("primary_email", primaryEmail)
}

func (m *User) IsProvisional() bool {
	return m.provisional
}

// Promote converts a provisional identity into a full account.
func (m *User) Promote(displayName string, primaryEmail string) {
	m.SetDisplayName(displayName)
	m.SetPrimaryEmail(primaryEmail)

	if m.provisional {
		m.provisional = false
		m.TrackChange("provisional", false)
	}
}

// Handle returns the stable user handle bytes handed to authenticators.
func (m *User) Handle() []byte {
	return m.id[:]
}

type UserFilter struct {
	id           *uuid.UUID
	primaryEmail *string
	provisional  *bool
}

func NewUserFilter() UserFilter {
	return UserFilter{}
}

func (f UserFilter) Clone() UserFilter {
	return f
}

func (f UserFilter) Id(id uuid.UUID) UserFilter {
	filter := f.Clone()
	filter.id = &id
	return filter
}

func (f UserFilter) HasId() bool {
	return f.id != nil
}

func (f UserFilter) GetId() uuid.UUID {
	return utils.ZeroIfNil(f.id)
}

func (f UserFilter) PrimaryEmail(primaryEmail string) UserFilter {
	filter := f.Clone()
	filter.primaryEmail = &primaryEmail
	return filter
}

func (f UserFilter) HasPrimaryEmail() bool {
	return f.primaryEmail != nil
}

func (f UserFilter) GetPrimaryEmail() string {
	return utils.ZeroIfNil(f.primaryEmail)
}

func (f UserFilter) Provisional(provisional bool) UserFilter {
	filter := f.Clone()
	filter.provisional = &provisional
	return filter
}

func (f UserFilter) HasProvisional() bool {
	return f.provisional != nil
}

func (f UserFilter) GetProvisional() bool {
	return utils.ZeroIfNil(f.provisional)
}

//go:generate mockgen -destination=./mocks/user_repository.go -package=mocks Sigil/internal/repositories UserRepository
type UserRepository interface {
	Single(ctx context.Context, filter UserFilter) (*User, error)
	First(ctx context.Context, filter UserFilter) (*User, error)
	Insert(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
