package httputil

import (
	"log/slog"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	if err := WriteJSON(w, status, errorBody{Error: msg}); err != nil {
		slog.Error("failed to write error response", "status", status, "error", err)
	}
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	Error(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	warn("bad request", msg, err)
	Error(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	warn("not found", msg, err)
	Error(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	warn("conflict", msg, err)
	Error(w, http.StatusConflict, msg)
}

func Forbidden(w http.ResponseWriter, msg string, err error) {
	warn("forbidden", msg, err)
	Error(w, http.StatusForbidden, msg)
}

func Unauthorized(w http.ResponseWriter, msg string) {
	Error(w, http.StatusUnauthorized, msg)
}

func warn(kind, msg string, err error) {
	if err != nil {
		slog.Warn(kind, "message", msg, "error", err)
	} else {
		slog.Warn(kind, "message", msg)
	}
}
