package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"promostudio/internal/media"
)

// MediaContent serves an object URL. Range requests are supported so players
// can seek.
func (a *App) MediaContent(w http.ResponseWriter, r *http.Request) {
	obj, data, err := a.Media.Open(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", obj.Format)
	w.Header().Set("Cache-Control", "private, no-store")
	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", media.DefaultFilename))
	}
	http.ServeContent(w, r, "", obj.CreatedAt, bytes.NewReader(data))
}
