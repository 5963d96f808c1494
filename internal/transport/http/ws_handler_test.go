package http

import (
	"context"
	"testing"
	"time"

	"github.com/roomcast/roomcast-server/internal/core"
	"github.com/roomcast/roomcast-server/internal/history/memory"
	"github.com/roomcast/roomcast-server/internal/proto"
)

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, memory.New(), 0)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketJoinChatAndLeave(t *testing.T) {
	ts := startTestServer(t, memory.New(), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	sendJoin(t, ctx, connA, "alice", "lobby")

	welcome := readMessage(t, ctx, connA)
	if welcome.Username != core.BotName || welcome.Text != "Welcome to Chat-App" {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}

	connB := dialWS(t, ctx, ts)
	sendJoin(t, ctx, connB, "bob", "lobby")

	joined := readMessage(t, ctx, connA)
	if joined.Username != core.BotName || joined.Text != "bob has joined the chat" {
		t.Fatalf("unexpected join notification: %+v", joined)
	}
	readMessage(t, ctx, connB) // bob's welcome

	sendChat(t, ctx, connA, "hi there")

	echoed := readMessage(t, ctx, connA)
	received := readMessage(t, ctx, connB)
	for _, msg := range []proto.MessageData{echoed, received} {
		if msg.Username != "alice" || msg.Text != "hi there" || msg.Time == "" {
			t.Fatalf("unexpected chat message: %+v", msg)
		}
	}

	connA.Close(1000, "done")

	left := readMessage(t, ctx, connB)
	if left.Username != core.BotName || left.Text != "alice has left the chat" {
		t.Fatalf("unexpected leave notification: %+v", left)
	}
}

func TestWebSocketReplaysHistoryAfterWelcome(t *testing.T) {
	store := memory.New()
	for _, text := range []string{"first", "second"} {
		msg := core.NewMessage("lobby", "alice", text, time.Now())
		if err := store.Append(context.Background(), msg); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	ts := startTestServer(t, store, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	sendJoin(t, ctx, conn, "bob", "lobby")

	welcome := readMessage(t, ctx, conn)
	if welcome.Text != "Welcome to Chat-App" {
		t.Fatalf("expected welcome first, got %+v", welcome)
	}

	replayedFirst := readMessage(t, ctx, conn)
	replayedSecond := readMessage(t, ctx, conn)
	if replayedFirst.Text != "first" || replayedSecond.Text != "second" {
		t.Fatalf("history out of order: %+v, %+v", replayedFirst, replayedSecond)
	}
	if replayedFirst.Username != "alice" {
		t.Fatalf("history lost author: %+v", replayedFirst)
	}
}

func TestWebSocketMessageBeforeJoinRejected(t *testing.T) {
	ts := startTestServer(t, memory.New(), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	sendChat(t, ctx, conn, "too early")

	env := readEnvelope(t, ctx, conn)
	if env.Type != proto.OutboundTypeError || env.Error == nil || env.Error.Code != core.ErrCodeNotJoined {
		t.Fatalf("expected not_joined error, got %+v", env)
	}
}

func TestWebSocketBadPayloadRejected(t *testing.T) {
	ts := startTestServer(t, memory.New(), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	sendJoin(t, ctx, conn, "", "lobby")

	env := readEnvelope(t, ctx, conn)
	if env.Type != proto.OutboundTypeError || env.Error == nil || env.Error.Code != core.ErrCodeBadRequest {
		t.Fatalf("expected bad_request error, got %+v", env)
	}
}

func TestWebSocketRateLimit(t *testing.T) {
	ts := startTestServer(t, memory.New(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	sendJoin(t, ctx, conn, "alice", "lobby")
	readMessage(t, ctx, conn) // welcome

	sendChat(t, ctx, conn, "one")
	readMessage(t, ctx, conn) // echo

	sendChat(t, ctx, conn, "two")
	env := readEnvelope(t, ctx, conn)
	if env.Type != proto.OutboundTypeError || env.Error == nil || env.Error.Code != "rate_limited" {
		t.Fatalf("expected rate_limited error, got %+v", env)
	}
}
