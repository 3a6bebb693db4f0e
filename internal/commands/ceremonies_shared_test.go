package commands

import (
	"Sigil/internal/clock"
	"Sigil/internal/config"
	"Sigil/internal/logging"
	"Sigil/internal/middlewares"
	"Sigil/internal/repositories"
	"Sigil/internal/services"
	"Sigil/internal/services/keyValue"
	"Sigil/utils"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testRelyingPartyId = "sigil.test"
	testOrigin         = "https://sigil.test"
)

func init() {
	logging.Logger = zap.NewNop().Sugar()

	config.C.Server.ExternalUrl = testOrigin
	config.C.Server.TokenSecret = "test-token-secret"
	config.C.RelyingParty.Id = testRelyingPartyId
	config.C.RelyingParty.DisplayName = "Sigil Test"
	config.C.RelyingParty.Origins = []string{testOrigin}
	config.C.RelyingParty.CeremonyTimeoutSeconds = 120
	config.C.RelyingParty.MaxCredentialsPerUser = 5
}

type testDependencies struct {
	userRepository       repositories.UserRepository
	credentialRepository repositories.CredentialRepository
}

// createTestContext wires a scope the way the server does, with real
// kv-backed services, a settable clock and mocked repositories.
func createTestContext(t *testing.T, deps testDependencies) (context.Context, clock.TimeSetterFn) {
	dc := ioc.NewDependencyCollection()

	clockService, timeSetter := clock.NewMockServiceNow()
	ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) clock.Service {
		return clockService
	})

	kvStore := keyValue.NewMemoryStore()
	ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) keyValue.Store {
		return kvStore
	})

	ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) services.ChallengeService {
		return services.NewChallengeService()
	})
	ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) services.CeremonyStateService {
		return services.NewCeremonyStateService()
	})
	ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) services.RegistrationTokenService {
		return services.NewRegistrationTokenService()
	})

	m := mediatr.NewMediator()
	ioc.RegisterSingleton(dc, func(dp *ioc.DependencyProvider) mediatr.Mediator {
		return m
	})

	if deps.userRepository != nil {
		ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) repositories.UserRepository {
			return deps.userRepository
		})
	}

	if deps.credentialRepository != nil {
		ioc.RegisterTransient(dc, func(dp *ioc.DependencyProvider) repositories.CredentialRepository {
			return deps.credentialRepository
		})
	}

	scope := dc.BuildProvider()
	t.Cleanup(func() {
		utils.PanicOnError(scope.Close, "closing scope")
	})

	return middlewares.ContextWithScope(t.Context(), scope), timeSetter
}

// testAuthenticator is a software stand-in for a platform authenticator. It
// holds one ES256 key and produces well-formed registration and assertion
// payloads.
type testAuthenticator struct {
	key          *ecdsa.PrivateKey
	credentialId []byte
	signCount    uint32
}

func newTestAuthenticator(t *testing.T) *testAuthenticator {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return &testAuthenticator{
		key:          key,
		credentialId: []byte("test-credential-id"),
	}
}

func (a *testAuthenticator) clientDataJSON(t *testing.T, ceremonyType string, challenge string) []byte {
	clientData, err := json.Marshal(map[string]string{
		"type":      ceremonyType,
		"challenge": challenge,
		"origin":    testOrigin,
	})
	require.NoError(t, err)
	return clientData
}

func (a *testAuthenticator) coseKey(t *testing.T) []byte {
	coseKey, err := cbor.Marshal(map[int]any{
		1:  2,
		3:  -7,
		-2: a.key.PublicKey.X.FillBytes(make([]byte, 32)),
		-3: a.key.PublicKey.Y.FillBytes(make([]byte, 32)),
	})
	require.NoError(t, err)
	return coseKey
}

func (a *testAuthenticator) authData(t *testing.T, flags byte, attested bool) []byte {
	rpIdHash := sha256.Sum256([]byte(testRelyingPartyId))

	data := make([]byte, 0, 128)
	data = append(data, rpIdHash[:]...)
	data = append(data, flags)
	data = binary.BigEndian.AppendUint32(data, a.signCount)

	if attested {
		data = append(data, make([]byte, 16)...) // aaguid
		data = binary.BigEndian.AppendUint16(data, uint16(len(a.credentialId)))
		data = append(data, a.credentialId...)
		data = append(data, a.coseKey(t)...)
	}

	return data
}

// attestationObject produces the registration response for a challenge,
// with user presence and verification asserted.
func (a *testAuthenticator) attestationObject(t *testing.T) []byte {
	return a.attestationObjectWithFlags(t, 0x45)
}

func (a *testAuthenticator) attestationObjectWithFlags(t *testing.T, flags byte) []byte {
	attStmt, err := cbor.Marshal(map[string]any{})
	require.NoError(t, err)

	attestation, err := cbor.Marshal(map[string]any{
		"fmt":      "none",
		"authData": a.authData(t, flags, true),
		"attStmt":  cbor.RawMessage(attStmt),
	})
	require.NoError(t, err)
	return attestation
}

// assert produces a signed assertion over the given clientDataJSON,
// advancing the authenticator's sign counter like real hardware does.
func (a *testAuthenticator) assert(t *testing.T, clientDataJSON []byte) (authData []byte, signature []byte) {
	return a.assertWithFlags(t, clientDataJSON, 0x05)
}

func (a *testAuthenticator) assertWithFlags(t *testing.T, clientDataJSON []byte, flags byte) (authData []byte, signature []byte) {
	a.signCount++
	authData = a.authData(t, flags, false)

	clientHash := sha256.Sum256(clientDataJSON)
	message := append(append([]byte{}, authData...), clientHash[:]...)
	digest := sha256.Sum256(message)

	signature, err := ecdsa.SignASN1(rand.Reader, a.key, digest[:])
	require.NoError(t, err)

	return authData, signature
}
