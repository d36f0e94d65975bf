package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var bErr *domain.BusinessError
	switch {
	case errors.As(err, &bErr):
		log.Warn("business rule rejected request", slog.String("reason", bErr.Error()))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, errorResponse{Code: "BUSINESS_RULE", Message: bErr.Error()})
	case errors.Is(err, store.ErrNotFound):
		log.Info("resource not found", slog.Any("err", err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, errorResponse{Code: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, store.ErrConflict):
		log.Info("booking conflict", slog.Any("err", err))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, errorResponse{Code: "CONFLICT", Message: "the slot is already booked"})
	case errors.Is(err, store.ErrLocked):
		log.Info("attendant calendar locked")
		w.WriteHeader(http.StatusLocked)
		render.JSON(w, r, errorResponse{Code: "LOCKED", Message: "the attendant calendar is busy, try again"})
	default:
		log.Error("request failed", slog.Any("err", err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Code: "INTERNAL", Message: "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string) {
	log.Warn("invalid request", slog.String("reason", msg))
	w.WriteHeader(http.StatusBadRequest)
	render.JSON(w, r, errorResponse{Code: "BAD_REQUEST", Message: msg})
}
