package handlers

import (
	"Sigil/internal/commands"
	"Sigil/internal/jsonTypes"
	"Sigil/internal/middlewares"
	"Sigil/internal/queries"
	"Sigil/utils"
	"encoding/json"
	"net/http"

	"github.com/The127/ioc"
	"github.com/The127/mediatr"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type GetCeremonyStateResponseDto struct {
	State jsonTypes.CeremonyState `json:"state"`
}

// GetCeremonyState returns the state of one ceremony attempt
// @Summary Get ceremony state
// @Description Returns the client-visible phase of a ceremony, polled by the UI while the browser prompt is open.
// @Tags Ceremonies
// @Produce json
// @Param ceremonyId path string true "Ceremony id"
// @Success 200 {object} GetCeremonyStateResponseDto
// @Failure 400
// @Failure 404
// @Failure 500
// @Router /api/ceremonies/{ceremonyId} [get]
func GetCeremonyState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	ceremonyId, err := uuid.Parse(vars["ceremonyId"])
	if err != nil {
		utils.HandleHttpError(w, utils.ErrInvalidUuid)
		return
	}

	scope := middlewares.GetScope(ctx)
	m := ioc.GetDependency[mediatr.Mediator](scope)

	response, err := mediatr.Send[*queries.GetCeremonyStateResponse](ctx, m, queries.GetCeremonyState{
		CeremonyId: ceremonyId,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	err = json.NewEncoder(w).Encode(GetCeremonyStateResponseDto{
		State: response.State,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}

type ReportCeremonyFailureRequestDto struct {
	Reason string `json:"reason" validate:"required,oneof=declined timeout unsupported"`
}

// ReportCeremonyFailure records a client-side ceremony failure
// @Summary Report ceremony failure
// @Description Marks a ceremony as failed when the user declined the prompt, the prompt timed out or the device lacks passkey support.
// @Tags Ceremonies
// @Accept json
// @Produce json
// @Param ceremonyId path string true "Ceremony id"
// @Param request body ReportCeremonyFailureRequestDto true "Failure reason"
// @Success 200 {object} GetCeremonyStateResponseDto
// @Failure 400
// @Failure 404
// @Failure 409
// @Failure 500
// @Router /api/ceremonies/{ceremonyId}/fail [post]
func ReportCeremonyFailure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	ceremonyId, err := uuid.Parse(vars["ceremonyId"])
	if err != nil {
		utils.HandleHttpError(w, utils.ErrInvalidUuid)
		return
	}

	var dto ReportCeremonyFailureRequestDto
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

	response, err := mediatr.Send[*commands.ReportCeremonyFailureResponse](ctx, m, commands.ReportCeremonyFailure{
		CeremonyId: ceremonyId,
		Reason:     commands.CeremonyFailureReason(dto.Reason),
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	err = json.NewEncoder(w).Encode(GetCeremonyStateResponseDto{
		State: response.State,
	})
	if err != nil {
		utils.HandleHttpError(w, err)
		return
	}
}
