package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"promostudio/internal/domain"
	"promostudio/internal/infra"
	"promostudio/internal/infra/credentials"
	"promostudio/internal/media"
	"promostudio/internal/promo"
	"promostudio/internal/trademark"
)

const maxBodyBytes = 64 << 10

// App carries the dependencies shared by the HTTP handlers.
type App struct {
	Config     infra.Config
	Logger     *infra.Logger
	Trademarks *trademark.Fabricator
	History    *trademark.History
	Promo      *promo.Manager
	Media      *media.Store
	Keys       *credentials.Selector
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
	return false
}

// fail maps domain errors onto HTTP statuses. Unknown errors are logged and
// reported as internal.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrBusy):
		a.error(w, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, domain.ErrNotReady):
		a.error(w, http.StatusConflict, "not_ready", err.Error())
	case errors.Is(err, domain.ErrClosed):
		a.error(w, http.StatusGone, "closed", err.Error())
	case errors.Is(err, domain.ErrEmptyQuery):
		a.error(w, http.StatusBadRequest, "empty_query", err.Error())
	case errors.Is(err, domain.ErrInvalidClass):
		a.error(w, http.StatusBadRequest, "invalid_class", err.Error())
	case errors.Is(err, domain.ErrUnknownTemplate):
		a.error(w, http.StatusBadRequest, "unknown_template", err.Error())
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("http: request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
