// Package memory keeps chat history in process memory. Nothing
// survives a restart; it exists for tests and for running the relay
// without a storage backend.
package memory

import (
	"context"
	"sync"

	"github.com/roomcast/roomcast-server/internal/core"
)

// Store implements history.Store with per-room in-memory slices.
type Store struct {
	mu       sync.Mutex
	messages map[string][]core.Message
}

// New constructs an empty store.
func New() *Store {
	return &Store{messages: make(map[string][]core.Message)}
}

// Append records one message.
func (s *Store) Append(ctx context.Context, msg core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.Room] = append(s.messages[msg.Room], msg)
	return nil
}

// Replay returns a copy of the room's messages in insertion order.
func (s *Store) Replay(ctx context.Context, room string, limit int) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[room]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]core.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
