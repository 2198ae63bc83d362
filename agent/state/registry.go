package state

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the explicit session table, keyed by session id. Sessions are
// created on first use and reset in place; there is no process-wide
// singleton session. Multiple sessions may run concurrently but each
// individual session is driven by one round at a time.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time

	onCreate func()
	onRemove func()
}

func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		sessions: make(map[string]*Session),
		now:      now,
	}
}

// SetLifecycleHooks installs callbacks fired on session create and remove,
// used for gauge bookkeeping.
func (r *Registry) SetLifecycleHooks(onCreate, onRemove func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCreate = onCreate
	r.onRemove = onRemove
}

// GetOrCreate returns the session with the given id, creating it when
// absent. An empty id gets a fresh uuid.
func (r *Registry) GetOrCreate(id string) *Session {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := NewSession(id, r.now)
	r.sessions[id] = s
	if r.onCreate != nil {
		r.onCreate()
	}
	return s
}

// Reset clears the session with the given id, if present. It waits for any
// in-flight turn on that session to finish.
func (r *Registry) Reset(id string) {
	r.mu.Lock()
	s, ok := r.sessions[strings.TrimSpace(id)]
	r.mu.Unlock()
	if !ok {
		return
	}

	s.Lock()
	defer s.Unlock()
	s.Reset()
}

// Remove drops a session entirely.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[strings.TrimSpace(id)]; ok {
		delete(r.sessions, strings.TrimSpace(id))
		if r.onRemove != nil {
			r.onRemove()
		}
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
