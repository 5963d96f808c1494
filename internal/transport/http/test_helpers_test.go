package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/roomcast/roomcast-server/internal/config"
	"github.com/roomcast/roomcast-server/internal/core"
	"github.com/roomcast/roomcast-server/internal/history"
	"github.com/roomcast/roomcast-server/internal/log"
	"github.com/roomcast/roomcast-server/internal/proto"
)

type outboundEnvelope struct {
	Type  string            `json:"type"`
	Event string            `json:"event,omitempty"`
	Data  proto.MessageData `json:"data,omitempty"`
	Error *proto.Error      `json:"error,omitempty"`
}

func startTestServer(t *testing.T, store history.Store, messagesPerMinute int) *httptest.Server {
	t.Helper()

	hub := core.NewHub(store, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, store, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		Limits:            config.LimitsConfig{MessagesPerMinute: messagesPerMinute},
	}, log.Nop())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendJoin(t *testing.T, ctx context.Context, conn *websocket.Conn, username, room string) {
	t.Helper()
	payload, _ := json.Marshal(proto.JoinRoomData{Username: username, Room: room})
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoinRoom, Data: payload}); err != nil {
		t.Fatalf("send join: %v", err)
	}
}

func sendChat(t *testing.T, ctx context.Context, conn *websocket.Conn, text string) {
	t.Helper()
	payload, _ := json.Marshal(proto.ChatMessageData{Text: text})
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeChatMessage, Data: payload}); err != nil {
		t.Fatalf("send chat: %v", err)
	}
}

func readEnvelope(t *testing.T, ctx context.Context, conn *websocket.Conn) outboundEnvelope {
	t.Helper()
	var env outboundEnvelope
	if err := wsjson.Read(ctx, conn, &env); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	return env
}

// readMessage skips until the next "message" event.
func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) proto.MessageData {
	t.Helper()
	for {
		env := readEnvelope(t, ctx, conn)
		if env.Type == proto.OutboundTypeEvent && env.Event == proto.EventNameMessage {
			return env.Data
		}
	}
}
