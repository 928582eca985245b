package promo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"promostudio/internal/domain"
	"promostudio/internal/infra"
	"promostudio/internal/media"
	"promostudio/internal/storage"
)

// Saver persists finished videos.
type Saver interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
}

// Manager owns the live sessions. A session that is not touched for the idle
// TTL is evicted and closed.
type Manager struct {
	cfg      Config
	sessions *cache.Cache
	saver    Saver
	logger   *infra.Logger
}

// NewManager builds a Manager. saver may be nil, in which case Save fails.
func NewManager(cfg Config, ttl time.Duration, saver Saver) *Manager {
	cfg = cfg.withDefaults()
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	sessions := cache.New(ttl, ttl/2)
	m := &Manager{cfg: cfg, sessions: sessions, saver: saver, logger: cfg.Logger}
	sessions.OnEvicted(func(id string, v interface{}) {
		if sess, ok := v.(*Session); ok {
			sess.Close()
		}
	})
	return m
}

// Open creates an idle session.
func (m *Manager) Open() *Session {
	sess := newSession(uuid.NewString(), m.cfg)
	m.sessions.SetDefault(sess.ID(), sess)
	m.logger.Debug().Str("session_id", sess.ID()).Msg("promo: session opened")
	return sess
}

// Get returns the session and extends its idle TTL.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.sessions.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	sess := v.(*Session)
	m.sessions.SetDefault(id, sess)
	return sess, nil
}

// Close removes and closes the session.
func (m *Manager) Close(id string) error {
	if _, ok := m.sessions.Get(id); !ok {
		return domain.ErrNotFound
	}
	m.sessions.Delete(id)
	return nil
}

// Generate starts a flow for the template on the session.
func (m *Manager) Generate(id, templateID string) (*Session, error) {
	sess, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	tpl, err := LookupTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if err := sess.Generate(tpl); err != nil {
		return nil, err
	}
	return sess, nil
}

// Snapshot renders the session for locale.
func (m *Manager) Snapshot(id, locale string) (Snapshot, error) {
	sess, err := m.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.Snapshot(locale), nil
}

// Save writes the ready video to the file store and returns its key.
func (m *Manager) Save(ctx context.Context, id string) (string, error) {
	if m.saver == nil {
		return "", errors.New("promo: no file store configured")
	}
	sess, err := m.Get(id)
	if err != nil {
		return "", err
	}
	obj, ok := sess.Media()
	if !ok {
		return "", domain.ErrNotReady
	}
	_, data, err := m.cfg.Media.Open(obj.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotReady
		}
		return "", err
	}
	key, err := m.saver.Write(ctx, storage.VideoKey(id, media.DefaultFilename), data)
	if err != nil {
		return "", fmt.Errorf("save video: %w", err)
	}
	m.logger.Info().Str("session_id", id).Str("key", key).Int("bytes", len(data)).Msg("promo: video saved")
	return key, nil
}

// SavedVideo returns the video an earlier Save wrote for the session along
// with its storage key. It is domain.ErrNotFound until Save succeeded.
func (m *Manager) SavedVideo(ctx context.Context, id string) (string, []byte, error) {
	if m.saver == nil {
		return "", nil, errors.New("promo: no file store configured")
	}
	if _, err := m.Get(id); err != nil {
		return "", nil, err
	}
	key := storage.VideoKey(id, media.DefaultFilename)
	data, err := m.saver.Read(ctx, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, domain.ErrNotFound
		}
		return "", nil, fmt.Errorf("read saved video: %w", err)
	}
	return key, data, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.ItemCount()
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	for id := range m.sessions.Items() {
		m.sessions.Delete(id)
	}
}
