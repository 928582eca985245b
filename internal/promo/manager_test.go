package promo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promostudio/internal/domain"
	"promostudio/internal/storage"
)

func newTestManager(t *testing.T, h *harness) (*Manager, *storage.FileStore) {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewManager(h.cfg, time.Hour, files), files
}

func TestManagerGenerateAndSave(t *testing.T) {
	h := newHarness()
	m, files := newTestManager(t, h)

	sess := m.Open()
	_, err := m.Save(context.Background(), sess.ID())
	assert.ErrorIs(t, err, domain.ErrNotReady)

	_, err = m.Generate(sess.ID(), "trademark-filing")
	require.NoError(t, err)
	waitFlow(t, sess)

	snap, err := m.Snapshot(sess.ID(), "en")
	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
	require.NotNil(t, snap.Media)
	assert.Equal(t, "promo-video.mp4", snap.DownloadName)
	require.NotNil(t, snap.Template)
	assert.Equal(t, "trademark-filing", snap.Template.ID)

	key, err := m.Save(context.Background(), sess.ID())
	require.NoError(t, err)
	assert.Equal(t, "generated/videos/"+sess.ID()+"/promo-video.mp4", key)
	data, err := os.ReadFile(filepath.Join(files.Root(), filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "mp4-bytes", string(data))
}

func TestManagerSavedVideo(t *testing.T) {
	h := newHarness()
	m, _ := newTestManager(t, h)
	ctx := context.Background()

	sess := m.Open()
	_, _, err := m.SavedVideo(ctx, sess.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound, "nothing saved yet")
	_, _, err = m.SavedVideo(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = m.Generate(sess.ID(), "trademark-filing")
	require.NoError(t, err)
	waitFlow(t, sess)
	saved, err := m.Save(ctx, sess.ID())
	require.NoError(t, err)

	key, data, err := m.SavedVideo(ctx, sess.ID())
	require.NoError(t, err)
	assert.Equal(t, saved, key)
	assert.Equal(t, "mp4-bytes", string(data))
}

func TestManagerUnknownIDsAndTemplates(t *testing.T) {
	h := newHarness()
	m, _ := newTestManager(t, h)

	_, err := m.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, m.Close("missing"), domain.ErrNotFound)
	_, err = m.Generate("missing", "trademark-filing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sess := m.Open()
	_, err = m.Generate(sess.ID(), "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownTemplate)
	assert.Equal(t, StateIdle, sess.State())
}

func TestManagerCloseRevokesMedia(t *testing.T) {
	h := newHarness()
	m, _ := newTestManager(t, h)

	sess := m.Open()
	_, err := m.Generate(sess.ID(), "gst-registration")
	require.NoError(t, err)
	waitFlow(t, sess)
	require.Equal(t, 1, h.media.Len())

	require.NoError(t, m.Close(sess.ID()))
	assert.Zero(t, h.media.Len())
	assert.Zero(t, m.Len())
	_, err = m.Get(sess.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManagerExpiryClosesSession(t *testing.T) {
	h := newHarness()
	m := NewManager(h.cfg, 200*time.Millisecond, nil)

	sess := m.Open()
	_, err := m.Generate(sess.ID(), "website-launch")
	require.NoError(t, err)
	waitFlow(t, sess)
	require.Equal(t, 1, h.media.Len())

	require.Eventually(t, func() bool { return h.media.Len() == 0 }, 5*time.Second, 5*time.Millisecond)
	_, err = m.Get(sess.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManagerShutdownClosesAll(t *testing.T) {
	h := newHarness()
	m, _ := newTestManager(t, h)
	a, b := m.Open(), m.Open()
	require.Equal(t, 2, m.Len())

	m.Shutdown()
	assert.Zero(t, m.Len())
	assert.ErrorIs(t, a.Generate(mustTemplate(t)), domain.ErrClosed)
	assert.ErrorIs(t, b.Generate(mustTemplate(t)), domain.ErrClosed)
}
