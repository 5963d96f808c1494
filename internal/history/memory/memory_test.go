package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roomcast/roomcast-server/internal/core"
)

func TestAppendReplayRoundTrip(t *testing.T) {
	req := require.New(t)
	s := New()
	ctx := context.Background()

	seeded := []core.Message{
		core.NewMessage("lobby", "alice", "first", time.Now()),
		core.NewMessage("lobby", "bob", "second", time.Now()),
	}
	for _, msg := range seeded {
		req.NoError(s.Append(ctx, msg))
	}

	replayed, err := s.Replay(ctx, "lobby", 0)
	req.NoError(err)
	req.Equal(seeded, replayed)

	limited, err := s.Replay(ctx, "lobby", 1)
	req.NoError(err)
	req.Len(limited, 1)
	req.Equal("second", limited[0].Text)
}

func TestReplayCopyIsIndependent(t *testing.T) {
	req := require.New(t)
	s := New()
	ctx := context.Background()

	req.NoError(s.Append(ctx, core.NewMessage("lobby", "alice", "original", time.Now())))

	replayed, err := s.Replay(ctx, "lobby", 0)
	req.NoError(err)
	replayed[0].Text = "mutated"

	again, err := s.Replay(ctx, "lobby", 0)
	req.NoError(err)
	req.Equal("original", again[0].Text)
}
