package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"promostudio/internal/trademark"
)

type trademarkSearchRequest struct {
	Query     string `json:"query"`
	Class     int    `json:"class"`
	SessionID string `json:"session_id"`
}

func (a *App) TrademarkClasses(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": trademark.Classes()})
}

func (a *App) TrademarkSearch(w http.ResponseWriter, r *http.Request) {
	var req trademarkSearchRequest
	if !a.decode(w, r, &req) {
		return
	}
	results, err := a.Trademarks.Search(r.Context(), req.Query, req.Class)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		a.fail(w, r, err)
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	search := trademark.Search{
		Query:      strings.TrimSpace(req.Query),
		Class:      req.Class,
		Results:    results,
		SearchedAt: time.Now().UTC(),
	}
	a.History.Put(sessionID, search)
	a.json(w, http.StatusOK, map[string]any{
		"session_id":  sessionID,
		"query":       search.Query,
		"class":       search.Class,
		"results":     search.Results,
		"searched_at": search.SearchedAt,
	})
}

func (a *App) TrademarkLastSearch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	search, ok := a.History.Get(sessionID)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "no search for session")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"session_id":  sessionID,
		"query":       search.Query,
		"class":       search.Class,
		"results":     search.Results,
		"searched_at": search.SearchedAt,
	})
}
