// Package session tracks which connection is who, and in which room.
package session

import (
	"strings"
	"sync"
)

// Session binds one live connection to a room and a display name. The room
// address never changes for the life of the session; switching rooms means a
// fresh connection and a fresh session.
type Session struct {
	ConnID   string
	Username string
	Room     string
}

// Registry is the server-side connection → session map. It is explicit owned
// state handed to the websocket layer at construction, so handlers can be
// tested against a fixture registry.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Join creates (or replaces) the session for a connection. An empty or blank
// desired name gets a generated pseudonym instead. Duplicate names across
// sessions are allowed.
func (r *Registry) Join(connID, roomAddress, desiredName string) *Session {
	username := strings.TrimSpace(desiredName)
	if username == "" {
		username = GenerateUsername()
	}

	sess := &Session{
		ConnID:   connID,
		Username: username,
		Room:     roomAddress,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[connID] = sess
	return sess
}

// Get looks up the session for a connection.
func (r *Registry) Get(connID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[connID]
	return sess, ok
}

// Leave removes and returns the session for a connection. A connection that
// never joined has no session; that is a no-op, not an error.
func (r *Registry) Leave(connID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[connID]
	if ok {
		delete(r.sessions, connID)
	}
	return sess, ok
}

// Count reports the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
