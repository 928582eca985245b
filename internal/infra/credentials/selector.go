package credentials

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"promostudio/internal/infra"
)

// KeyStore is the shared key managed by operators (see cmd/geminikey). It is
// read only; visitor selections never reach it.
type KeyStore interface {
	GeminiAPIKey(ctx context.Context) (string, error)
}

// SelectorOptions configures a Selector.
type SelectorOptions struct {
	// EnvKey is a key fixed by configuration. It always wins.
	EnvKey string
	// Store holds the operator key used when a session selected none.
	Store KeyStore
	// Window bounds how long OpenSelectKey waits for a selection.
	Window time.Duration
	Logger *infra.Logger
}

// Selector resolves the API key used for video generation and coordinates
// interactive selection per promo session: OpenSelectKey on a session view
// blocks until SelectKey is called for the same session or the selection
// window closes. A key selected for one session is never visible to another.
type Selector struct {
	envKey string
	store  KeyStore
	window time.Duration
	logger *infra.Logger

	mu       sync.Mutex
	sessions map[string]*selection
}

type selection struct {
	key     string
	waiters []chan struct{}
}

func NewSelector(opts SelectorOptions) *Selector {
	window := opts.Window
	if window <= 0 {
		window = 2 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Selector{
		envKey:   strings.TrimSpace(opts.EnvKey),
		store:    opts.Store,
		window:   window,
		logger:   logger,
		sessions: make(map[string]*selection),
	}
}

// ForSession returns the key view of one promo session.
func (s *Selector) ForSession(sessionID string) *SessionKeys {
	return &SessionKeys{sel: s, id: sessionID}
}

// APIKey returns the key in effect for a session: configured key, then the
// session's own selection, then the stored operator key.
func (s *Selector) APIKey(ctx context.Context, sessionID string) (string, error) {
	if s.envKey != "" {
		return s.envKey, nil
	}
	s.mu.Lock()
	var selected string
	if sel, ok := s.sessions[sessionID]; ok {
		selected = sel.key
	}
	s.mu.Unlock()
	if selected != "" {
		return selected, nil
	}
	if s.store == nil {
		return "", nil
	}
	return s.store.GeminiAPIKey(ctx)
}

func (s *Selector) HasSelectedKey(ctx context.Context, sessionID string) (bool, error) {
	key, err := s.APIKey(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return key != "", nil
}

// OpenSelectKey waits for the next SelectKey call for the session. The window
// elapsing is a completed (dismissed) selection, not an error.
func (s *Selector) OpenSelectKey(ctx context.Context, sessionID string) error {
	ch := make(chan struct{})
	s.mu.Lock()
	sel := s.entry(sessionID)
	sel.waiters = append(sel.waiters, ch)
	s.mu.Unlock()
	s.logger.Info().Str("session_id", sessionID).Dur("window", s.window).Msg("credentials: waiting for api key selection")

	timer := time.NewTimer(s.window)
	defer timer.Stop()

	select {
	case <-ch:
		return nil
	case <-timer.C:
		s.removeWaiter(sessionID, ch)
		s.logger.Warn().Str("session_id", sessionID).Msg("credentials: key selection window elapsed")
		return nil
	case <-ctx.Done():
		s.removeWaiter(sessionID, ch)
		return ctx.Err()
	}
}

// SelectKey records a key chosen for one session and releases that session's
// pending selections. The key lives in memory until Release.
func (s *Selector) SelectKey(ctx context.Context, sessionID, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credentials: api key is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("credentials: session id is required")
	}
	s.mu.Lock()
	sel := s.entry(sessionID)
	sel.key = key
	waiters := sel.waiters
	sel.waiters = nil
	s.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
	s.logger.Info().Str("session_id", sessionID).Int("released", len(waiters)).Msg("credentials: api key selected")
	return nil
}

// Pending reports whether a selection is currently awaited by the session.
func (s *Selector) Pending(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.sessions[sessionID]
	return ok && len(sel.waiters) > 0
}

// Release forgets the session's selection. Waiters still blocked observe
// their own context and are not woken.
func (s *Selector) Release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sel, ok := s.sessions[sessionID]; ok {
		sel.key = ""
		if len(sel.waiters) == 0 {
			delete(s.sessions, sessionID)
		}
	}
}

// Configured reports whether the key comes from configuration and cannot be
// replaced by selection.
func (s *Selector) Configured() bool {
	return s.envKey != ""
}

func (s *Selector) entry(sessionID string) *selection {
	sel, ok := s.sessions[sessionID]
	if !ok {
		sel = &selection{}
		s.sessions[sessionID] = sel
	}
	return sel
}

func (s *Selector) removeWaiter(sessionID string, ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	for i, w := range sel.waiters {
		if w == ch {
			sel.waiters = append(sel.waiters[:i], sel.waiters[i+1:]...)
			break
		}
	}
	if len(sel.waiters) == 0 && sel.key == "" {
		delete(s.sessions, sessionID)
	}
}

// SessionKeys is the Selector bound to one promo session.
type SessionKeys struct {
	sel *Selector
	id  string
}

func (k *SessionKeys) HasSelectedKey(ctx context.Context) (bool, error) {
	return k.sel.HasSelectedKey(ctx, k.id)
}

func (k *SessionKeys) OpenSelectKey(ctx context.Context) error {
	return k.sel.OpenSelectKey(ctx, k.id)
}

func (k *SessionKeys) APIKey(ctx context.Context) (string, error) {
	return k.sel.APIKey(ctx, k.id)
}

// Release drops the session's selection once the session is closed.
func (k *SessionKeys) Release() {
	k.sel.Release(k.id)
}
