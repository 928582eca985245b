package handlers

import (
	"net/http"
	"strings"
)

type selectKeyRequest struct {
	SessionID string `json:"session_id"`
	APIKey    string `json:"api_key"`
}

// CredentialsStatus reports the key state of the promo session named by the
// session_id query parameter.
func (a *App) CredentialsStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session_id required")
		return
	}
	if _, err := a.Promo.Get(id); err != nil {
		a.fail(w, r, err)
		return
	}
	hasKey, err := a.Keys.HasSelectedKey(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"has_key":    hasKey,
		"configured": a.Keys.Configured(),
		"pending":    a.Keys.Pending(id),
	})
}

// CredentialsSelectKey completes the key selection of one promo session. The
// key is never applied to other sessions.
func (a *App) CredentialsSelectKey(w http.ResponseWriter, r *http.Request) {
	var req selectKeyRequest
	if !a.decode(w, r, &req) {
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "session_id required")
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "api_key required")
		return
	}
	if a.Keys.Configured() {
		a.error(w, http.StatusConflict, "configured", "api key is fixed by configuration")
		return
	}
	if _, err := a.Promo.Get(req.SessionID); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Keys.SelectKey(r.Context(), req.SessionID, req.APIKey); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
