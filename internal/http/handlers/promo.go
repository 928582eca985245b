package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"promostudio/internal/media"
	"promostudio/internal/middleware"
	"promostudio/internal/promo"
)

type generateRequest struct {
	TemplateID string `json:"template_id"`
}

func (a *App) PromoTemplates(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": promo.Templates()})
}

func (a *App) PromoOpenSession(w http.ResponseWriter, r *http.Request) {
	sess := a.Promo.Open()
	a.json(w, http.StatusCreated, sess.Snapshot(middleware.LocaleFromContext(r.Context())))
}

func (a *App) PromoSession(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Promo.Snapshot(chi.URLParam(r, "id"), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, snap)
}

func (a *App) PromoGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.TemplateID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "template_id required")
		return
	}
	sess, err := a.Promo.Generate(chi.URLParam(r, "id"), req.TemplateID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, sess.Snapshot(middleware.LocaleFromContext(r.Context())))
}

func (a *App) PromoSave(w http.ResponseWriter, r *http.Request) {
	key, err := a.Promo.Save(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"storage_key": key,
		"filename":    media.DefaultFilename,
	})
}

// PromoSavedVideo streams the copy written by PromoSave.
func (a *App) PromoSavedVideo(w http.ResponseWriter, r *http.Request) {
	_, data, err := a.Promo.SavedVideo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", media.DefaultFilename))
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(data))
}

func (a *App) PromoCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := a.Promo.Close(chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
