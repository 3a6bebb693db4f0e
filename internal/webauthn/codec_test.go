package webauthn

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/suite"
)

type CodecTestSuite struct {
	suite.Suite
}

func TestCodecTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CodecTestSuite))
}

func (s *CodecTestSuite) Test_Encode_RoundTripsArbitraryBytes() {
	// arrange
	long := make([]byte, 255)
	for i := range long {
		long[i] = byte(i)
	}

	inputs := [][]byte{
		{},
		{0x00},
		make([]byte, 32),
		{0xff, 0xfe, 0xfd, 0x2b, 0x2f, 0x3d},
		long,
	}

	for _, input := range inputs {
		// act
		decoded, err := Decode(Encode(input))

		// assert
		s.Require().NoError(err)
		s.Len(decoded, len(input))
		if len(input) > 0 {
			s.Equal(input, decoded)
		}
	}
}

func (s *CodecTestSuite) Test_Encode_ProducesNoPaddingOrStandardAlphabet() {
	// arrange
	input := []byte{0xfb, 0xff, 0xbf}

	// act
	encoded := Encode(input)

	// assert
	s.NotContains(encoded, "=")
	s.NotContains(encoded, "+")
	s.NotContains(encoded, "/")
}

func (s *CodecTestSuite) Test_Decode_RejectsStandardBase64() {
	// act
	_, err := Decode("+/==")

	// assert
	s.ErrorIs(err, ErrMalformedCeremonyData)
}

func (s *CodecTestSuite) Test_DecodeClientData_ExtractsFields() {
	// arrange
	raw := []byte(`{"type":"webauthn.get","challenge":"abc123","origin":"https://app.example.com","crossOrigin":false}`)

	// act
	clientData, err := DecodeClientData(raw)

	// assert
	s.Require().NoError(err)
	s.Equal(CeremonyTypeGet, clientData.Type)
	s.Equal("abc123", clientData.Challenge)
	s.Equal("https://app.example.com", clientData.Origin)
}

func (s *CodecTestSuite) Test_DecodeClientData_RejectsMissingFields() {
	// arrange
	raw := []byte(`{"type":"webauthn.create","challenge":"abc123"}`)

	// act
	_, err := DecodeClientData(raw)

	// assert
	s.ErrorIs(err, ErrMalformedCeremonyData)
}

func (s *CodecTestSuite) Test_DecodeClientData_RejectsInvalidJson() {
	// act
	_, err := DecodeClientData([]byte(`{"type":`))

	// assert
	s.ErrorIs(err, ErrMalformedCeremonyData)
}

func (s *CodecTestSuite) Test_ParseAuthenticatorData_DecodesAssertionLayout() {
	// arrange
	raw := buildAuthData(s.T(), "app.example.com", FlagUserPresent|FlagUserVerified, 41, nil, nil)

	// act
	authData, err := ParseAuthenticatorData(raw)

	// assert
	s.Require().NoError(err)
	s.Equal(RelyingPartyIdHash("app.example.com"), authData.RpIdHash)
	s.Equal(uint32(41), authData.SignCount)
	s.True(authData.Flags.UserPresent())
	s.True(authData.Flags.UserVerified())
	s.False(authData.Flags.HasAttestedCredentialData())
	s.Nil(authData.PublicKey)
}

func (s *CodecTestSuite) Test_ParseAuthenticatorData_DecodesAttestedCredentialData() {
	// arrange
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	s.Require().NoError(err)

	credentialId := []byte("credential-1")
	coseKey := marshalES256COSEKey(s.T(), &privateKey.PublicKey)
	raw := buildAuthData(s.T(), "app.example.com", FlagUserPresent|FlagAttestedCredentialData, 0, credentialId, coseKey)

	// act
	authData, err := ParseAuthenticatorData(raw)

	// assert
	s.Require().NoError(err)
	s.Equal(credentialId, authData.CredentialId)
	s.Len(authData.AAGUID, 16)
	s.Require().NotNil(authData.PublicKey)
	s.Equal(CoseAlgorithmES256, authData.PublicKey.Algorithm)
	s.NotEmpty(authData.PublicKey.DER)
}

func (s *CodecTestSuite) Test_ParseAuthenticatorData_RejectsShortInput() {
	// act
	_, err := ParseAuthenticatorData(make([]byte, 36))

	// assert
	s.ErrorIs(err, ErrMalformedCeremonyData)
}

func (s *CodecTestSuite) Test_ParseAuthenticatorData_RejectsTruncatedCredentialId() {
	// arrange
	raw := make([]byte, 55)
	raw[32] = byte(FlagAttestedCredentialData)
	binary.BigEndian.PutUint16(raw[53:55], 64)

	// act
	_, err := ParseAuthenticatorData(raw)

	// assert
	s.ErrorIs(err, ErrMalformedCeremonyData)
}

func (s *CodecTestSuite) Test_ParseAttestationObject_DecodesEnvelope() {
	// arrange
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	s.Require().NoError(err)

	coseKey := marshalES256COSEKey(s.T(), &privateKey.PublicKey)
	authDataRaw := buildAuthData(s.T(), "app.example.com", FlagUserPresent|FlagAttestedCredentialData, 0, []byte("credential-1"), coseKey)

	envelope, err := cbor.Marshal(map[string]any{
		"fmt":      "none",
		"authData": authDataRaw,
		"attStmt":  map[string]any{},
	})
	s.Require().NoError(err)

	// act
	authData, err := ParseAttestationObject(envelope)

	// assert
	s.Require().NoError(err)
	s.Equal([]byte("credential-1"), authData.CredentialId)
	s.NotNil(authData.PublicKey)
}

func (s *CodecTestSuite) Test_ParseAttestationObject_RejectsMissingAttestedCredentialData() {
	// arrange
	authDataRaw := buildAuthData(s.T(), "app.example.com", FlagUserPresent, 3, nil, nil)

	envelope, err := cbor.Marshal(map[string]any{
		"fmt":      "none",
		"authData": authDataRaw,
		"attStmt":  map[string]any{},
	})
	s.Require().NoError(err)

	// act
	_, err = ParseAttestationObject(envelope)

	// assert
	s.ErrorIs(err, ErrMalformedCeremonyData)
}

func (s *CodecTestSuite) Test_ParseAttestationObject_RejectsInvalidCbor() {
	// act
	_, err := ParseAttestationObject([]byte{0xff, 0x00})

	// assert
	s.ErrorIs(err, ErrMalformedCeremonyData)
}

// buildAuthData assembles raw authenticatorData bytes the way an
// authenticator would, optionally with attested credential data.
func buildAuthData(t *testing.T, rpId string, flags AuthenticatorFlags, signCount uint32, credentialId []byte, coseKey []byte) []byte {
	t.Helper()

	rpIdHash := sha256.Sum256([]byte(rpId))

	raw := make([]byte, 0, 37+16+2+len(credentialId)+len(coseKey))
	raw = append(raw, rpIdHash[:]...)
	raw = append(raw, byte(flags))
	raw = binary.BigEndian.AppendUint32(raw, signCount)

	if flags.HasAttestedCredentialData() {
		raw = append(raw, make([]byte, 16)...)
		raw = binary.BigEndian.AppendUint16(raw, uint16(len(credentialId)))
		raw = append(raw, credentialId...)
		raw = append(raw, coseKey...)
	}

	return raw
}

func marshalES256COSEKey(t *testing.T, publicKey *ecdsa.PublicKey) []byte {
	t.Helper()

	raw, err := cbor.Marshal(map[int]any{
		coseLabelKty:  coseKeyTypeEC2,
		coseLabelAlg:  CoseAlgorithmES256,
		coseLabelEC2X: publicKey.X.Bytes(),
		coseLabelEC2Y: publicKey.Y.Bytes(),
	})
	if err != nil {
		t.Fatalf("marshalling COSE key: %v", err)
	}
	return raw
}
