package core

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// collectEvents drains every event of the given kind that arrives
// within the window.
func collectEvents(ch <-chan *Event, kind EventKind, window time.Duration) []*Event {
	var got []*Event
	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				got = append(got, ev)
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	return got
}

func startHub(t *testing.T, store HistoryStore) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(store, nil, 0)
	go hub.Run(ctx)
	return hub
}

func startHubLogged(t *testing.T, store HistoryStore, w io.Writer) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := zerolog.New(w)
	hub := NewHub(store, &logger, 0)
	go hub.Run(ctx)
	return hub
}

// logBuffer is a concurrency-safe sink for zerolog output.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func join(c *Client, username, room string) {
	c.Commands <- &Command{Kind: CommandJoinRoom, User: username, Room: room}
}

func send(c *Client, text string) {
	c.Commands <- &Command{Kind: CommandSendMessage, Text: text}
}

// fakeStore is an in-memory HistoryStore with switchable failures.
type fakeStore struct {
	mu        sync.Mutex
	appendErr error
	replayErr error
	messages  map[string][]Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{messages: make(map[string][]Message)}
}

func (s *fakeStore) Append(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.messages[msg.Room] = append(s.messages[msg.Room], msg)
	return nil
}

func (s *fakeStore) Replay(_ context.Context, room string, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replayErr != nil {
		return nil, s.replayErr
	}
	msgs := s.messages[room]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *fakeStore) stored(room string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages[room]))
	copy(out, s.messages[room])
	return out
}
