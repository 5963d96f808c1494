// Package history defines the durable message store consumed by the
// broadcast engine and the REST surface. Backends live in subpackages;
// each persists messages append-only per room and replays them in
// insertion order.
package history

import (
	"context"

	"github.com/roomcast/roomcast-server/internal/core"
)

// Store is the persistence boundary. Append durably persists one
// message; Replay returns a room's messages in persisted order, a
// fresh query on every call. limit > 0 returns only the most recent
// limit messages, still oldest-first.
type Store interface {
	Append(ctx context.Context, msg core.Message) error
	Replay(ctx context.Context, room string, limit int) ([]core.Message, error)

	// Close releases the underlying backend.
	Close() error
}

// Drivers accepted by storage config.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)
