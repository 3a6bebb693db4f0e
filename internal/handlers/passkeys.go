package handlers

import (
	"Sigil/internal/commands"
	"Sigil/internal/jsonTypes"
	"Sigil/internal/middlewares"
	"Sigil/utils"
	"encoding/json"
	"net/http"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type BeginPasskeyRegistrationRequestDto struct {
	DisplayName string `json:"displayName" validate:"max=255"`
}

type BeginPasskeyRegistrationResponseDto struct {
	Challenge jsonTypes.PasskeyRegistrationChallenge `json:"challenge"`
}

// BeginPasskeyRegistration starts a passkey registration ceremony
// @Summary Begin passkey registration
// @Description Issues a registration challenge and ceremony. Without a session a provisional identity is created.
// @Tags Passkeys
// @Accept json
// @Produce json
// @Param request body BeginPasskeyRegistrationRequestDto true "Registration options"
// @Success 201 {object} BeginPasskeyRegistrationResponseDto
// @Failure 400
// @Failure 500
// @Router /api/passkeys/registrations [post]
func BeginPasskeyRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto BeginPasskeyRegistrationRequestDto
	err := json.NewDecoder(r.Body).Decode(&dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	err = utils.ValidateDto(dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.BeginPasskeyRegistrationResponse](ctx, m, commands.BeginPasskeyRegistration{
		DisplayName: dto.DisplayName,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	err = json.NewEncoder(w).Encode(BeginPasskeyRegistrationResponseDto{
		Challenge: response.Challenge,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

type FinishPasskeyRegistrationRequestDto struct {
	RegistrationToken string `json:"registrationToken" validate:"required"`
	ClientDataJSON    string `json:"clientDataJSON" validate:"required"`
	AttestationObject string `json:"attestationObject" validate:"required"`
}

type FinishPasskeyRegistrationResponseDto struct {
	UserId       uuid.UUID `json:"userId"`
	CredentialId string    `json:"credentialId"`
}

// FinishPasskeyRegistration completes a passkey registration ceremony
// @Summary Finish passkey registration
// @Description Verifies the attestation response and stores the new credential. A session cookie is set on success.
// @Tags Passkeys
// @Accept json
// @Produce json
// @Param ceremonyId path string true "Ceremony id"
// @Param request body FinishPasskeyRegistrationRequestDto true "Attestation response"
// @Success 201 {object} FinishPasskeyRegistrationResponseDto
// @Failure 400
// @Failure 401
// @Failure 409
// @Failure 500
// @Router /api/passkeys/registrations/{ceremonyId}/complete [post]
func FinishPasskeyRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	ceremonyId, err := uuid.Parse(vars["ceremonyId"])
	if err != nil {
		utils.HandleHttpError(w, utils.ErrInvalidUuid)
		return
	}

	var dto FinishPasskeyRegistrationRequestDto
	err = json.NewDecoder(r.Body).Decode(&dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	err = utils.ValidateDto(dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.FinishPasskeyRegistrationResponse](ctx, m, commands.FinishPasskeyRegistration{
		CeremonyId:        ceremonyId,
		RegistrationToken: dto.RegistrationToken,
		ClientDataJSON:    dto.ClientDataJSON,
		AttestationObject: dto.AttestationObject,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	err = middlewares.CreateSession(w, r, response.UserId, nil)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	err = json.NewEncoder(w).Encode(FinishPasskeyRegistrationResponseDto{
		UserId:       response.UserId,
		CredentialId: response.CredentialId,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

type BeginPasskeyLoginRequestDto struct {
	PrimaryEmail string `json:"primaryEmail" validate:"omitempty,email"`
}

type BeginPasskeyLoginResponseDto struct {
	Challenge jsonTypes.PasskeyLoginChallenge `json:"challenge"`
}

// BeginPasskeyLogin starts a passkey authentication ceremony
// @Summary Begin passkey login
// @Description Issues an authentication challenge, optionally narrowed to the credentials of a known email address.
// @Tags Passkeys
// @Accept json
// @Produce json
// @Param request body BeginPasskeyLoginRequestDto true "Login options"
// @Success 201 {object} BeginPasskeyLoginResponseDto
// @Failure 400
// @Failure 500
// @Router /api/passkeys/logins [post]
func BeginPasskeyLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto BeginPasskeyLoginRequestDto
	err := json.NewDecoder(r.Body).Decode(&dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	err = utils.ValidateDto(dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.BeginPasskeyLoginResponse](ctx, m, commands.BeginPasskeyLogin{
		PrimaryEmail: dto.PrimaryEmail,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	err = json.NewEncoder(w).Encode(BeginPasskeyLoginResponseDto{
		Challenge: response.Challenge,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

type FinishPasskeyLoginRequestDto struct {
	CredentialId      string `json:"credentialId" validate:"required"`
	ClientDataJSON    string `json:"clientDataJSON" validate:"required"`
	AuthenticatorData string `json:"authenticatorData" validate:"required"`
	Signature         string `json:"signature" validate:"required"`
}

type FinishPasskeyLoginResponseDto struct {
	UserId uuid.UUID `json:"userId"`
}

// FinishPasskeyLogin completes a passkey authentication ceremony
// @Summary Finish passkey login
// @Description Verifies the assertion and sets a session cookie. Failures are reported without a cause.
// @Tags Passkeys
// @Accept json
// @Produce json
// @Param ceremonyId path string true "Ceremony id"
// @Param request body FinishPasskeyLoginRequestDto true "Assertion response"
// @Success 200 {object} FinishPasskeyLoginResponseDto
// @Failure 400
// @Failure 401
// @Failure 500
// @Router /api/passkeys/logins/{ceremonyId}/complete [post]
func FinishPasskeyLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	ceremonyId, err := uuid.Parse(vars["ceremonyId"])
	if err != nil {
		utils.HandleHttpError(w, utils.ErrInvalidUuid)
		return
	}

	var dto FinishPasskeyLoginRequestDto
	err = json.NewDecoder(r.Body).Decode(&dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	err = utils.ValidateDto(dto)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*commands.FinishPasskeyLoginResponse](ctx, m, commands.FinishPasskeyLogin{
		CeremonyId:        ceremonyId,
		CredentialId:      dto.CredentialId,
		ClientDataJSON:    dto.ClientDataJSON,
		AuthenticatorData: dto.AuthenticatorData,
		Signature:         dto.Signature,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	err = middlewares.CreateSession(w, r, response.UserId, utils.Ptr(response.CredentialId))
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	err = json.NewEncoder(w).Encode(FinishPasskeyLoginResponseDto{
		UserId: response.UserId,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}
