package handler

import (
	"encoding/json"
	"net/http"

	"registrar/internal/registry/models"
	dErrors "registrar/pkg/domain-errors"
)

type errorEnvelope struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// statusFor translates a domain error code into an HTTP status.
func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput,
		models.CodeInvalidName, models.CodeInvalidEndpoint:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, models.CodeShortNameDenied,
		models.CodeReservedName, models.CodeAddressNotAuthorized:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, models.CodeNameUnavailable,
		models.CodeWalletAlreadyOwns, models.CodeNoSeason, models.CodeSeasonFull:
		return http.StatusConflict
	case models.CodeProvisioningFailed:
		return http.StatusBadGateway
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError centralizes domain error translation to HTTP responses so every
// endpoint returns the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(code))
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error:       string(code),
		Description: dErrors.MessageOf(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
