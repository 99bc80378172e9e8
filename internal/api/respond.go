package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "partner-intake/internal/common/errors"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	stdErr := apperrors.Normalize(err)
	writeJSON(w, statusFor(stdErr.Code), errorBody{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

// statusFor maps engine error codes onto HTTP statuses.
func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeMarketConfigNotFound, apperrors.ErrCodeContactNotFound, apperrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeFormAlreadySubmitted, apperrors.ErrCodeInvalidTransition:
		return http.StatusConflict
	case apperrors.ErrCodeUnknownOption, apperrors.ErrCodeInvalidAnswer:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeInputParsingFailed:
		return http.StatusBadRequest
	case apperrors.ErrCodeInvitationSendFailed:
		return http.StatusBadGateway
	case apperrors.ErrCodeContactReadFailed, apperrors.ErrCodeContactWriteFailed,
		apperrors.ErrCodeSessionStoreFailed:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func readJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewInputParsingFailedError(errors.New("request body is empty"))
		}
		return apperrors.NewInputParsingFailedError(err)
	}
	return nil
}
