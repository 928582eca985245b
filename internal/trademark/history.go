package trademark

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Search is the last submission of a search session.
type Search struct {
	Query      string         `json:"query"`
	Class      int            `json:"class"`
	Results    []SearchResult `json:"results"`
	SearchedAt time.Time      `json:"searched_at"`
}

// History keeps the latest result list per search session. Each new search
// replaces the previous list wholesale; idle sessions expire.
type History struct {
	items *cache.Cache
}

func NewHistory(ttl time.Duration) *History {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &History{items: cache.New(ttl, ttl/2)}
}

func (h *History) Put(sessionID string, search Search) {
	if sessionID == "" {
		return
	}
	h.items.SetDefault(sessionID, search)
}

func (h *History) Get(sessionID string) (Search, bool) {
	v, ok := h.items.Get(sessionID)
	if !ok {
		return Search{}, false
	}
	search, ok := v.(Search)
	return search, ok
}
