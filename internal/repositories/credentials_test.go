package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialFilter(t *testing.T) {
	// arrange
	f := NewCredentialFilter()
	id := uuid.New()
	userId := uuid.New()
	credentialId := "Y3JlZGVudGlhbC0x"

	// act
	f = f.Id(id)
	f = f.UserId(userId)
	f = f.CredentialId(credentialId)

	// assert
	assert.Equal(t, &id, f.id)
	assert.Equal(t, &userId, f.userId)
	assert.Equal(t, &credentialId, f.credentialId)
}

func TestCredential_AdvanceSignCount_Increases(t *testing.T) {
	// arrange
	credential := NewCredential(uuid.New(), "Y3JlZA", []byte{0x01}, -7, 5)

	// act
	err := credential.AdvanceSignCount(6)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(6), credential.SignCount())
	assert.Contains(t, credential.Changes(), "sign_count")
}

func TestCredential_AdvanceSignCount_RejectsRegression(t *testing.T) {
	// arrange
	credential := NewCredential(uuid.New(), "Y3JlZA", []byte{0x01}, -7, 5)

	// act
	err := credential.AdvanceSignCount(5)

	// assert
	require.ErrorIs(t, err, ErrCounterRegression)
	assert.Equal(t, int64(5), credential.SignCount())
	assert.Empty(t, credential.Changes())
}

func TestCredential_AdvanceSignCount_RejectsZeroAfterNonZero(t *testing.T) {
	// arrange
	credential := NewCredential(uuid.New(), "Y3JlZA", []byte{0x01}, -7, 3)

	// act
	err := credential.AdvanceSignCount(0)

	// assert
	require.ErrorIs(t, err, ErrCounterRegression)
	assert.Equal(t, int64(3), credential.SignCount())
}

func TestCredential_AdvanceSignCount_SkipsCheckWithoutCounterSupport(t *testing.T) {
	// arrange
	credential := NewCredential(uuid.New(), "Y3JlZA", []byte{0x01}, -7, 0)

	// act
	err := credential.AdvanceSignCount(0)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), credential.SignCount())
	assert.False(t, credential.CounterSupported())
	assert.Empty(t, credential.Changes())
}

func TestUser_Promote_ClearsProvisionalFlag(t *testing.T) {
	// arrange
	user := NewProvisionalUser("Passkey user")

	// act
	user.Promote("Ada Lovelace", "ada@example.com")

	// assert
	assert.False(t, user.IsProvisional())
	assert.Equal(t, "Ada Lovelace", user.DisplayName())
	assert.Equal(t, "ada@example.com", user.PrimaryEmail())
	assert.Contains(t, user.Changes(), "provisional")
	assert.Contains(t, user.Changes(), "display_name")
	assert.Contains(t, user.Changes(), "primary_email")
}
