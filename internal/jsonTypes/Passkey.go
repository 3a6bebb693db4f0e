package jsonTypes

import "github.com/google/uuid"

type PasskeyRelyingParty struct {
	Id          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type PasskeyUser struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}

// PasskeyAuthenticatorSelection mirrors the WebAuthn authenticatorSelection
// dictionary handed to the browser.
type PasskeyAuthenticatorSelection struct {
	AuthenticatorAttachment string `json:"authenticatorAttachment"`
	UserVerification        string `json:"userVerification"`
}

// PasskeyRegistrationChallenge is the parameter set handed to the browser's
// credential creation call. All binary fields are base64url encoded.
type PasskeyRegistrationChallenge struct {
	CeremonyId             uuid.UUID                     `json:"ceremonyId"`
	Challenge              string                        `json:"challenge"`
	RelyingParty           PasskeyRelyingParty           `json:"relyingParty"`
	User                   PasskeyUser                   `json:"user"`
	Algorithms             []int                         `json:"algorithms"`
	AuthenticatorSelection PasskeyAuthenticatorSelection `json:"authenticatorSelection"`
	TimeoutSeconds         int                           `json:"timeoutSeconds"`
	RegistrationToken      string                        `json:"registrationToken"`
}

// PasskeyLoginChallenge is the parameter set handed to the browser's
// assertion call.
type PasskeyLoginChallenge struct {
	CeremonyId           uuid.UUID `json:"ceremonyId"`
	Challenge            string    `json:"challenge"`
	RelyingPartyId       string    `json:"relyingPartyId"`
	UserVerification     string    `json:"userVerification"`
	TimeoutSeconds       int       `json:"timeoutSeconds"`
	AllowedCredentialIds []string  `json:"allowedCredentialIds,omitempty"`
}
