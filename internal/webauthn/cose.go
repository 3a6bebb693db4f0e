package webauthn

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

const (
	CoseAlgorithmES256   = -7
	CoseAlgorithmEd25519 = -8 // COSE calls this EdDSA and marks it as deprecated, but implementations use it for Ed25519 instead of -19
	CoseAlgorithmPS256   = -37
	CoseAlgorithmRS256   = -257
)

// SupportedAlgorithms is the list advertised in registration ceremony
// parameters, in order of preference.
var SupportedAlgorithms = []int{
	CoseAlgorithmES256,
	CoseAlgorithmEd25519,
	CoseAlgorithmRS256,
}

var ErrUnsupportedAlgorithm = errors.New("unsupported public key algorithm")

const (
	coseKeyTypeOKP = 1
	coseKeyTypeEC2 = 2
	coseKeyTypeRSA = 3

	coseLabelKty = 1
	coseLabelAlg = 3

	coseLabelEC2X = -2
	coseLabelEC2Y = -3

	coseLabelOKPX = -2

	coseLabelRSAN = -1
	coseLabelRSAE = -2
)

type CredentialPublicKey struct {
	// Algorithm is the COSE algorithm identifier the key was registered with.
	Algorithm int
	// DER holds the key in PKIX form, which is what gets persisted.
	DER []byte
}

// ParseCOSEKey converts the COSE_Key bytes at the end of attested credential
// data into a DER-encoded public key plus its algorithm.
func ParseCOSEKey(raw []byte) (*CredentialPublicKey, error) {
	var m map[int]any
	if err := cbor.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshalling COSE key: %w", ErrMalformedCeremonyData)
	}

	kty, ok := coseInt(m[coseLabelKty])
	if !ok {
		return nil, fmt.Errorf("COSE key missing key type (1): %w", ErrMalformedCeremonyData)
	}

	alg, ok := coseInt(m[coseLabelAlg])
	if !ok {
		return nil, fmt.Errorf("COSE key missing algorithm (3): %w", ErrMalformedCeremonyData)
	}

	switch kty {
	case coseKeyTypeEC2:
		return parseEC2Key(m, int(alg))

	case coseKeyTypeOKP:
		return parseOKPKey(m, int(alg))

	case coseKeyTypeRSA:
		return parseRSAKey(m, int(alg))

	default:
		return nil, fmt.Errorf("COSE key type %d: %w", kty, ErrUnsupportedAlgorithm)
	}
}

func parseEC2Key(m map[int]any, alg int) (*CredentialPublicKey, error) {
	if alg != CoseAlgorithmES256 {
		return nil, fmt.Errorf("EC2 key with algorithm %d: %w", alg, ErrUnsupportedAlgorithm)
	}

	x, ok := coseBytes(m[coseLabelEC2X])
	if !ok {
		return nil, fmt.Errorf("COSE key missing x coordinate (-2): %w", ErrMalformedCeremonyData)
	}

	y, ok := coseBytes(m[coseLabelEC2Y])
	if !ok {
		return nil, fmt.Errorf("COSE key missing y coordinate (-3): %w", ErrMalformedCeremonyData)
	}

	publicKey := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}

	return marshalKey(publicKey, alg)
}

func parseOKPKey(m map[int]any, alg int) (*CredentialPublicKey, error) {
	if alg != CoseAlgorithmEd25519 {
		return nil, fmt.Errorf("OKP key with algorithm %d: %w", alg, ErrUnsupportedAlgorithm)
	}

	x, ok := coseBytes(m[coseLabelOKPX])
	if !ok {
		return nil, fmt.Errorf("COSE key missing public key bytes (-2): %w", ErrMalformedCeremonyData)
	}
	if len(x) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("ed25519 public key has %d bytes: %w", len(x), ErrMalformedCeremonyData)
	}

	return marshalKey(ed25519.PublicKey(x), alg)
}

func parseRSAKey(m map[int]any, alg int) (*CredentialPublicKey, error) {
	if alg != CoseAlgorithmRS256 && alg != CoseAlgorithmPS256 {
		return nil, fmt.Errorf("RSA key with algorithm %d: %w", alg, ErrUnsupportedAlgorithm)
	}

	n, ok := coseBytes(m[coseLabelRSAN])
	if !ok {
		return nil, fmt.Errorf("COSE key missing modulus (-1): %w", ErrMalformedCeremonyData)
	}

	e, ok := coseBytes(m[coseLabelRSAE])
	if !ok {
		return nil, fmt.Errorf("COSE key missing exponent (-2): %w", ErrMalformedCeremonyData)
	}

	publicKey := &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(new(big.Int).SetBytes(e).Int64()),
	}

	return marshalKey(publicKey, alg)
}

func marshalKey(publicKey any, alg int) (*CredentialPublicKey, error) {
	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("marshalling public key: %w", err)
	}

	return &CredentialPublicKey{
		Algorithm: alg,
		DER:       der,
	}, nil
}

// coseInt reads an integer label value. The cbor library decodes positive
// integers into uint64 and negative ones into int64 when the target is any.
func coseInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func coseBytes(v any) ([]byte, bool) {
	b, ok := v.([]byte)
	if !ok || len(b) == 0 {
		return nil, false
	}
	return b, true
}
