// Package media keeps downloaded binaries addressable by short-lived object
// URLs until they are revoked.
package media

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"promostudio/internal/domain"
)

// DefaultFilename is suggested when a video is saved as a file.
const DefaultFilename = "promo-video.mp4"

// Object describes a blob published by the store.
type Object struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Format    string    `json:"format"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type entry struct {
	object Object
	data   []byte
}

// Store holds blobs in memory. Every Create must be paired with a Revoke.
type Store struct {
	prefix string
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewStore creates a store whose object URLs start with prefix, e.g. "/v1/media".
func NewStore(prefix string) *Store {
	if prefix == "" {
		prefix = "/v1/media"
	}
	return &Store{
		prefix:  prefix,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Create publishes data and returns its object reference.
func (s *Store) Create(data []byte, format string) Object {
	if format == "" {
		format = "application/octet-stream"
	}
	id := uuid.NewString()
	obj := Object{
		ID:        id,
		URL:       fmt.Sprintf("%s/%s", s.prefix, id),
		Format:    format,
		Bytes:     int64(len(data)),
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.entries[id] = &entry{object: obj, data: data}
	s.mu.Unlock()
	return obj
}

// Open returns the object and its bytes.
func (s *Store) Open(id string) (Object, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Object{}, nil, domain.ErrNotFound
	}
	return e.object, e.data, nil
}

// Revoke releases the blob. It reports whether the id was live.
func (s *Store) Revoke(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// Len returns the number of live objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
