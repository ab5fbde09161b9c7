// Package session provides the in-memory session registry.
package session

import (
	"sync"
	"time"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryRegistry implements ports.SessionRegistry on go-cache.
// Sessions are never written to disk.
type MemoryRegistry struct {
	cache             *cache.Cache
	mu                sync.Mutex
	defaultCredential string
}

// NewMemoryRegistry creates a registry. A ttl of zero keeps sessions until
// they are ended explicitly. A non-empty defaultCredential is given to every
// new session.
func NewMemoryRegistry(ttl time.Duration, defaultCredential string) *MemoryRegistry {
	expiration, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiration, cleanup = ttl, ttl/2
	}
	return &MemoryRegistry{
		cache:             cache.New(expiration, cleanup),
		defaultCredential: defaultCredential,
	}
}

// NewID returns a fresh opaque session identifier.
func NewID() string {
	return uuid.NewString()
}

// Create starts a session under a new server-generated ID.
func (r *MemoryRegistry) Create() *entities.Session {
	s := entities.NewSession(NewID())
	if r.defaultCredential != "" {
		s.SetCredential(r.defaultCredential)
	}

	r.mu.Lock()
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
	r.mu.Unlock()

	log.WithField("session", s.ID).Info("session.created")
	return s
}

// Get returns a live session and refreshes its expiry.
func (r *MemoryRegistry) Get(id string) (*entities.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(id)
	if !found {
		return nil, false
	}
	s := x.(*entities.Session)
	r.cache.Set(id, s, cache.DefaultExpiration)
	return s, true
}

// End destroys the session and everything it holds.
func (r *MemoryRegistry) End(id string) {
	r.mu.Lock()
	r.cache.Delete(id)
	r.mu.Unlock()

	log.WithField("session", id).Info("session.ended")
}

// Count returns the number of live sessions.
func (r *MemoryRegistry) Count() int {
	return r.cache.ItemCount()
}
