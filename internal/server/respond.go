package server

import (
	"encoding/json"
	"net/http"

	"github.com/lumenlab/lumen/pkg/errors"
)

// errorBody is the structured error envelope for the /api/v1 surface.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a structured error to an HTTP status and the
// {"error": {"code", "message"}} envelope.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusForCode(code), errorBody{Error: errorDetail{
		Code:    code,
		Message: errors.UserMessage(err),
	}})
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidImage,
		errors.ErrCodeInvalidEvent, errors.ErrCodeInvalidFormat,
		errors.ErrCodeNoMarker, errors.ErrCodeNoObject:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound,
		errors.ErrCodePlanNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
