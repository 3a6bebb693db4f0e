package webauthn

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
)

var ErrSignatureInvalid = errors.New("signature verification failed")

// SignedPayload reconstructs the byte sequence the authenticator signed:
// authenticatorData || SHA256(clientDataJSON).
func SignedPayload(authData []byte, clientDataJSON []byte) []byte {
	clientHash := sha256.Sum256(clientDataJSON)
	signedData := make([]byte, len(authData)+len(clientHash))
	copy(signedData, authData)
	copy(signedData[len(authData):], clientHash[:])
	return signedData
}

// RelyingPartyIdHash computes the rpIdHash value authenticators embed in
// authenticatorData for a given relying party id.
func RelyingPartyIdHash(rpId string) []byte {
	hash := sha256.Sum256([]byte(rpId))
	return hash[:]
}

// VerifySignature checks an assertion signature against a stored PKIX public
// key using the algorithm the credential was registered with.
func VerifySignature(publicKeyDER []byte, algorithm int, message []byte, signature []byte) error {
	publicKey, err := x509.ParsePKIXPublicKey(publicKeyDER)
	if err != nil {
		return fmt.Errorf("parsing stored public key: %w", err)
	}

	switch k := publicKey.(type) {
	case *rsa.PublicKey:
		hash := sha256.Sum256(message)

		switch algorithm {
		case CoseAlgorithmRS256:
			if err := rsa.VerifyPKCS1v15(k, crypto.SHA256, hash[:], signature); err != nil {
				return ErrSignatureInvalid
			}

		case CoseAlgorithmPS256:
			if err := rsa.VerifyPSS(k, crypto.SHA256, hash[:], signature, nil); err != nil {
				return ErrSignatureInvalid
			}

		default:
			return ErrUnsupportedAlgorithm
		}

	case *ecdsa.PublicKey:
		if algorithm != CoseAlgorithmES256 {
			return ErrUnsupportedAlgorithm
		}

		hash := sha256.Sum256(message)

		if !ecdsa.VerifyASN1(k, hash[:], signature) {
			return ErrSignatureInvalid
		}

	case ed25519.PublicKey:
		if algorithm != CoseAlgorithmEd25519 {
			return ErrUnsupportedAlgorithm
		}

		if !ed25519.Verify(k, message, signature) {
			return ErrSignatureInvalid
		}

	default:
		return ErrUnsupportedAlgorithm
	}

	return nil
}
