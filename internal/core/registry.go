package core

// Session binds a live connection to a username and a room. Sessions
// are immutable once created; a re-join replaces the session wholesale.
type Session struct {
	ConnID   string
	Username string
	Room     string
}

// SessionRegistry maps connection identifiers to sessions. It is not
// safe for concurrent use: the hub goroutine is its only caller.
type SessionRegistry struct {
	sessions map[string]*Session
}

// NewSessionRegistry constructs an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Join creates and stores a session for the connection. It fails with
// ErrDuplicateConnection if the connection is already registered.
func (r *SessionRegistry) Join(connID, username, room string) (*Session, error) {
	if _, exists := r.sessions[connID]; exists {
		return nil, ErrDuplicateConnection
	}
	s := &Session{ConnID: connID, Username: username, Room: room}
	r.sessions[connID] = s
	return s, nil
}

// Lookup returns the session for the connection, or ErrNotFound.
func (r *SessionRegistry) Lookup(connID string) (*Session, error) {
	s, exists := r.sessions[connID]
	if !exists {
		return nil, ErrNotFound
	}
	return s, nil
}

// Leave removes and returns the session if present. A second call for
// the same connection returns ErrNotFound rather than failing fatally,
// so disconnect races stay harmless.
func (r *SessionRegistry) Leave(connID string) (*Session, error) {
	s, exists := r.sessions[connID]
	if !exists {
		return nil, ErrNotFound
	}
	delete(r.sessions, connID)
	return s, nil
}

// Len reports the number of live sessions.
func (r *SessionRegistry) Len() int {
	return len(r.sessions)
}
