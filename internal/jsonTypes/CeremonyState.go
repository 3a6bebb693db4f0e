package jsonTypes

import "github.com/google/uuid"

type CeremonyType string

const (
	CeremonyTypeRegistration   CeremonyType = "registration"
	CeremonyTypeAuthentication CeremonyType = "authentication"
)

type CeremonyPhase string

const (
	CeremonyPhaseReady          CeremonyPhase = "ready"
	CeremonyPhaseRegistering    CeremonyPhase = "registering"
	CeremonyPhaseAuthenticating CeremonyPhase = "authenticating"
	CeremonyPhaseSuccess        CeremonyPhase = "success"
	CeremonyPhaseError          CeremonyPhase = "error"
)

// CanTransitionTo encodes the allowed phase transitions:
// ready moves into one of the two active phases, active phases terminate in
// success or error, and error rearms to ready for a retry.
func (p CeremonyPhase) CanTransitionTo(next CeremonyPhase) bool {
	switch p {
	case CeremonyPhaseReady:
		return next == CeremonyPhaseRegistering || next == CeremonyPhaseAuthenticating

	case CeremonyPhaseRegistering, CeremonyPhaseAuthenticating:
		return next == CeremonyPhaseSuccess || next == CeremonyPhaseError

	case CeremonyPhaseError:
		return next == CeremonyPhaseReady

	default:
		return false
	}
}

func (p CeremonyPhase) IsTerminal() bool {
	return p == CeremonyPhaseSuccess || p == CeremonyPhaseError
}

// CeremonyState is the client-visible projection of one ceremony attempt.
// It carries presentation feedback only. Whether a credential actually exists
// is answered by the credential listing, never by this object.
type CeremonyState struct {
	Id           uuid.UUID     `json:"id"`
	Type         CeremonyType  `json:"type"`
	Phase        CeremonyPhase `json:"phase"`
	Supported    bool          `json:"supported"`
	Registered   bool          `json:"registered"`
	CredentialId string        `json:"credentialId,omitempty"`
	Feedback     string        `json:"feedback"`
}
