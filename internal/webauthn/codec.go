// Package webauthn contains the pure codec and verification primitives for
// passkey ceremonies: transport encoding of binary authenticator fields,
// structural decoding of clientDataJSON, authenticatorData and
// attestationObject, COSE public key handling and assertion signature
// verification. Nothing in here touches storage or the network.
package webauthn

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var ErrMalformedCeremonyData = errors.New("malformed ceremony data")

const (
	// CeremonyTypeCreate is the clientDataJSON type for registration.
	CeremonyTypeCreate = "webauthn.create"
	// CeremonyTypeGet is the clientDataJSON type for authentication.
	CeremonyTypeGet = "webauthn.get"
)

// Encode converts a raw authenticator buffer into the transport encoding.
// Every binary field crosses the wire as unpadded base64url, in both
// ceremony directions.
func Encode(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode is the inverse of Encode.
func Decode(encoded string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding base64url field: %w", ErrMalformedCeremonyData)
	}
	return raw, nil
}

type ClientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Origin    string `json:"origin"`
}

// DecodeClientData structurally decodes clientDataJSON. It only extracts the
// fields the ceremonies verify; unknown fields are ignored.
func DecodeClientData(raw []byte) (ClientData, error) {
	var clientData ClientData
	if err := json.Unmarshal(raw, &clientData); err != nil {
		return ClientData{}, fmt.Errorf("unmarshalling client data: %w", ErrMalformedCeremonyData)
	}

	if clientData.Type == "" || clientData.Challenge == "" || clientData.Origin == "" {
		return ClientData{}, fmt.Errorf("client data misses required fields: %w", ErrMalformedCeremonyData)
	}

	return clientData, nil
}

type AuthenticatorFlags byte

const (
	FlagUserPresent            AuthenticatorFlags = 0x01
	FlagUserVerified           AuthenticatorFlags = 0x04
	FlagAttestedCredentialData AuthenticatorFlags = 0x40
)

func (f AuthenticatorFlags) UserPresent() bool {
	return f&FlagUserPresent != 0
}

func (f AuthenticatorFlags) UserVerified() bool {
	return f&FlagUserVerified != 0
}

func (f AuthenticatorFlags) HasAttestedCredentialData() bool {
	return f&FlagAttestedCredentialData != 0
}

type AuthenticatorData struct {
	RpIdHash  []byte
	Flags     AuthenticatorFlags
	SignCount uint32

	// Attested credential data, only present when Flags has the AT bit,
	// which is the case during registration.
	AAGUID       []byte
	CredentialId []byte
	PublicKey    *CredentialPublicKey
}

const (
	minAuthDataLength           = 37
	attestedCredentialDataOffset = 55
)

// ParseAuthenticatorData decodes the fixed authenticatorData layout:
// rpIdHash (32) || flags (1) || signCount (4) || attested credential data.
func ParseAuthenticatorData(raw []byte) (*AuthenticatorData, error) {
	if len(raw) < minAuthDataLength {
		return nil, fmt.Errorf("authenticator data too short: %w", ErrMalformedCeremonyData)
	}

	authData := &AuthenticatorData{
		RpIdHash:  raw[:32],
		Flags:     AuthenticatorFlags(raw[32]),
		SignCount: binary.BigEndian.Uint32(raw[33:37]),
	}

	if !authData.Flags.HasAttestedCredentialData() {
		return authData, nil
	}

	if len(raw) < attestedCredentialDataOffset {
		return nil, fmt.Errorf("attested credential data too short: %w", ErrMalformedCeremonyData)
	}

	credentialIdLength := int(binary.BigEndian.Uint16(raw[53:55]))
	if len(raw) < attestedCredentialDataOffset+credentialIdLength {
		return nil, fmt.Errorf("credential id out of bounds: %w", ErrMalformedCeremonyData)
	}

	authData.AAGUID = raw[37:53]
	authData.CredentialId = raw[attestedCredentialDataOffset : attestedCredentialDataOffset+credentialIdLength]

	publicKey, err := ParseCOSEKey(raw[attestedCredentialDataOffset+credentialIdLength:])
	if err != nil {
		return nil, err
	}
	authData.PublicKey = publicKey

	return authData, nil
}

type attestationObject struct {
	Fmt      string          `cbor:"fmt"`
	AuthData []byte          `cbor:"authData"`
	AttStmt  cbor.RawMessage `cbor:"attStmt"`
}

// ParseAttestationObject decodes the CBOR attestation envelope returned by
// credential creation and the authenticator data inside it. The attestation
// statement itself is not evaluated, challenge binding is what ties the new
// credential to the ceremony.
func ParseAttestationObject(raw []byte) (*AuthenticatorData, error) {
	var att attestationObject
	if err := cbor.Unmarshal(raw, &att); err != nil {
		return nil, fmt.Errorf("unmarshalling attestation object: %w", ErrMalformedCeremonyData)
	}

	authData, err := ParseAuthenticatorData(att.AuthData)
	if err != nil {
		return nil, err
	}

	if !authData.Flags.HasAttestedCredentialData() {
		return nil, fmt.Errorf("attestation without attested credential data: %w", ErrMalformedCeremonyData)
	}

	return authData, nil
}
