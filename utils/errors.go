package utils

import (
	"Sigil/internal/config"
	"Sigil/internal/logging"
	"Sigil/internal/webauthn"
	"errors"
	"net/http"
)

var ErrResourceNotFound = errors.New("not found")

var ErrHttpBadRequest = errors.New("bad request")
var ErrHttpUnauthorized = errors.New("unauthorized")
var ErrHttpConflict = errors.New("conflict")
var ErrHttpNotFound = errors.New("not found")

var ErrInvalidUuid = errors.New("invalid uuid")

func HandleHttpError(w http.ResponseWriter, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, ErrInvalidUuid):
		status = http.StatusBadRequest
		msg = err.Error()

	case errors.Is(err, ErrHttpBadRequest), errors.Is(err, webauthn.ErrMalformedCeremonyData):
		status = http.StatusBadRequest
		msg = err.Error()

	case errors.Is(err, ErrHttpUnauthorized):
		status = http.StatusUnauthorized
		msg = "unauthorized"

	case errors.Is(err, ErrHttpConflict):
		status = http.StatusConflict
		msg = err.Error()

	case errors.Is(err, ErrHttpNotFound), errors.Is(err, ErrResourceNotFound):
		status = http.StatusNotFound
		msg = err.Error()

	default:
		status = http.StatusInternalServerError
		if config.IsProduction() {
			msg = "internal server error"
		} else {
			msg = err.Error()
		}
	}

	http.Error(w, msg, status)
}

func PanicOnError(f func() error, msg string) {
	err := f()
	if err != nil {
		logging.Logger.Fatalf("%s: %v", msg, err)
	}
}
