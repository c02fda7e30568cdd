// Package response writes JSON bodies and error envelopes for the HTTP handlers.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"obra_tracker/pkg/core/utils"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RespondErrorWithCode writes a JSON error. devErrs are logged, never sent.
func RespondErrorWithCode(w http.ResponseWriter, status int, errorCode string, publicMessage string, details any, devErrs ...error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Code: errorCode, Message: publicMessage, Details: details})

	entry := utils.Logger.WithField("status", status)
	if len(devErrs) > 0 && devErrs[0] != nil {
		entry = entry.WithError(devErrs[0])
	}
	if status >= http.StatusInternalServerError {
		entry.Error(publicMessage)
	} else {
		entry.Warn(publicMessage)
	}
}

// RespondWithJSON for successful cases.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// HandleAppError maps err through utils.AsAppError and writes it.
func HandleAppError(w http.ResponseWriter, err error) {
	appErr := utils.AsAppError(err)
	RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, err)
}

// DecodeAndValidate reads a JSON body into dst and checks its validate tags. On failure it
// writes the 400 reply and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON body", nil, err)
		return false
	}
	if err := utils.Validate.Struct(dst); err != nil {
		RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Validation failed", fieldErrors(err), err)
		return false
	}
	return true
}

func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
