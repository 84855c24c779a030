// Package session holds the dataset of the current upload.
//
// A Session is created on each successful upload and owns its Frame. The
// Registry keeps only the latest one: storing a new session releases the
// previous Frame, and lookups of a replaced id fail with SessionNotFound.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paveg/plotdeck/internal/dataframe"
	"github.com/paveg/plotdeck/internal/errors"
)

// Session is one uploaded dataset
type Session struct {
	ID       string
	Filename string
	Created  time.Time
	Frame    *dataframe.Frame
}

// Registry stores the current session
type Registry struct {
	mu      sync.RWMutex
	current *Session
	now     func() time.Time
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// Replace stores df as the current dataset and returns its session. The
// previous session's Frame is released.
func (r *Registry) Replace(filename string, df *dataframe.Frame) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Filename: filename,
		Created:  r.now(),
		Frame:    df,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.Frame != nil {
		r.current.Frame.Release()
	}
	r.current = s
	return s
}

// Use runs fn with the session id while holding it current, so its Frame
// cannot be released underneath fn
func (r *Registry) Use(id string, fn func(*Session) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil || r.current.ID != id {
		return errors.NewSessionNotFoundError(id)
	}
	return fn(r.current)
}

// Current returns the latest session, if any
func (r *Registry) Current() (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.current != nil
}

// Close releases the current Frame
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && r.current.Frame != nil {
		r.current.Frame.Release()
	}
	r.current = nil
}
