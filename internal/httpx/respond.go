package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Internal logs err and answers 500 without exposing it.
func Internal(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	logger.ErrorContext(r.Context(), op, "err", err, "path", r.URL.Path)
	Message(w, http.StatusInternalServerError, "Internal server error")
}

// BadRequest answers 400 with the message of a *BadRequestError.
func BadRequest(w http.ResponseWriter, err error) {
	var bre *BadRequestError
	if errors.As(err, &bre) {
		Message(w, http.StatusBadRequest, bre.Msg)
		return
	}
	Message(w, http.StatusBadRequest, "invalid request")
}
