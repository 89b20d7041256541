package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stylefeed/go-backend/pkg/e"
)

// ErrorResponse — форма тела ошибки API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func NewErrorResponse(msg, details string) *ErrorResponse {
	return &ErrorResponse{
		Error:   msg,
		Details: details,
	}
}

// ToHTTPResponse сопоставляет ошибку usecase-слоя со статусом и телом ответа.
// Ошибки валидации отдаются как есть, остальное прячется за 500 с details.
func ToHTTPResponse(err error) (int, *ErrorResponse) {
	switch {
	case errors.Is(err, e.ErrUserIDRequired):
		return http.StatusBadRequest, NewErrorResponse(e.ErrUserIDRequired.Error(), "")
	case errors.Is(err, e.ErrLinkIDRequired):
		return http.StatusBadRequest, NewErrorResponse(e.ErrLinkIDRequired.Error(), "")
	case errors.Is(err, e.ErrEmbeddingTextEmpty):
		return http.StatusBadRequest, NewErrorResponse(e.ErrEmbeddingTextEmpty.Error(), "")
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, NewErrorResponse(e.ErrStatusBadRequest.Error(), "")
	default:
		return http.StatusInternalServerError, NewErrorResponse(e.ErrInternalServerError.Error(), err.Error())
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, body := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
