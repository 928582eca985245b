package handlers

import "net/http"

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"video_backend":   a.Config.VideoBackend,
		"active_sessions": a.Promo.Len(),
	})
}
