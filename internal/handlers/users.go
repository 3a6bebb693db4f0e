package handlers

import (
	"Sigil/internal/commands"
	"Sigil/internal/middlewares"
	"Sigil/internal/queries"
	"Sigil/utils"
	"encoding/json"
	"net/http"
	"time"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ListPasskeysResponseDto struct {
	Id           uuid.UUID  `json:"id"`
	CredentialId string     `json:"credentialId"`
	Algorithm    int        `json:"algorithm"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastUsedAt   *time.Time `json:"lastUsedAt"`
}

type PagedListPasskeysResponseDto struct {
	Items      []ListPasskeysResponseDto `json:"items"`
	TotalCount int                       `json:"totalCount"`
}

// ListPasskeys lists a user's registered passkeys
// @Summary List passkeys
// @Description Lists the passkeys registered for the given user. Only the owner may call this.
// @Tags Users
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {object} PagedListPasskeysResponseDto
// @Failure 400
// @Failure 401
// @Failure 500
// @Router /api/users/{userId}/passkeys [get]
func ListPasskeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	userId, err := uuid.Parse(vars["userId"])
	if err != nil {
		utils.HandleHttpError(w, utils.ErrInvalidUuid)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*queries.ListPasskeysResponse](ctx, m, queries.ListPasskeys{
		UserId: userId,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	items := utils.MapSlice(response.Items, func(x queries.ListPasskeysResponseItem) ListPasskeysResponseDto {
		return ListPasskeysResponseDto{
			Id:           x.Id,
			CredentialId: x.CredentialId,
			Algorithm:    x.Algorithm,
			CreatedAt:    x.CreatedAt,
			LastUsedAt:   x.LastUsedAt,
		}
	})

	w.Header().Set("Content-Type", "application/json")

	err = json.NewEncoder(w).Encode(PagedListPasskeysResponseDto{
		Items:      utils.EmptyIfNil(items),
		TotalCount: response.TotalCount,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

// RemovePasskey removes a registered passkey
// @Summary Remove passkey
// @Description Deletes one of the user's passkeys. Only the owner may call this.
// @Tags Users
// @Param userId path string true "User id"
// @Param passkeyId path string true "Passkey id"
// @Success 204
// @Failure 400
// @Failure 401
// @Failure 404
// @Failure 500
// @Router /api/users/{userId}/passkeys/{passkeyId} [delete]
func RemovePasskey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	userId, err := uuid.Parse(vars["userId"])
	if err != nil {
		utils.HandleHttpError(w, utils.ErrInvalidUuid)
		return
	}

	passkeyId, err := uuid.Parse(vars["passkeyId"])
	if err != nil {
		utils.HandleHttpError(w, utils.ErrInvalidUuid)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	_, err = mediatr.Send[*commands.RemovePasskeyResponse](ctx, m, commands.RemovePasskey{
		UserId:    userId,
		PasskeyId: passkeyId,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type PromoteProvisionalUserRequestDto struct {
	DisplayName  string `json:"displayName" validate:"required,min=1,max=255"`
	PrimaryEmail string `json:"primaryEmail" validate:"required,email"`
}

type PromoteProvisionalUserResponseDto struct {
	Id uuid.UUID `json:"id"`
}

// PromoteProvisionalUser upgrades a provisional identity to a full account
// @Summary Promote provisional user
// @Description Attaches a display name and email address to an identity created during fingerprint-first registration.
// @Tags Users
// @Accept json
// @Produce json
// @Param userId path string true "User id"
// @Param request body PromoteProvisionalUserRequestDto true "Account data"
// @Success 200 {object} PromoteProvisionalUserResponseDto
// @Failure 400
// @Failure 401
// @Failure 500
// @Router /api/users/{userId}/promote [post]
func PromoteProvisionalUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	userId, err := uuid.Parse(vars["userId"])
	if err != nil {
		utils.HandleHttpError(w, utils.ErrInvalidUuid)
		return
	}

	var dto PromoteProvisionalUserRequestDto
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

	response, err := mediatr.Send[*commands.PromoteProvisionalUserResponse](ctx, m, commands.PromoteProvisionalUser{
		UserId:       userId,
		DisplayName:  dto.DisplayName,
		PrimaryEmail: dto.PrimaryEmail,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	err = json.NewEncoder(w).Encode(PromoteProvisionalUserResponseDto{
		Id: response.Id,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

// Logout ends the current session
// @Summary Logout
// @Description Deletes the current session and clears the session cookie.
// @Tags Users
// @Success 204
// @Failure 500
// @Router /api/logout [post]
func Logout(w http.ResponseWriter, r *http.Request) {
	err := middlewares.DeleteSession(w, r)
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
