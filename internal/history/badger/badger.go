// Package badger persists chat history in BadgerDB. Keys are
// "msg:{room_hex}:{timestamp_padded}:{uuid}" so a prefix scan yields a
// room's messages in chronological order: the 19-digit zero padding
// makes lexicographic order match time order, and the UUID keeps two
// messages landing on the same nanosecond from colliding. The room
// segment is hex-encoded because room names may contain the ":"
// separator, and a raw name would let one room's prefix match
// another's keys.
package badger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/roomcast/roomcast-server/internal/core"
)

// Store implements history.Store backed by BadgerDB.
type Store struct {
	db *badgerdb.DB
}

type record struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Time     string `json:"time"`
}

// roomKey hex-encodes a room name for use as a key segment. Hex is
// byte-order preserving, so sorted keys stay sorted per room.
func roomKey(room string) string {
	return hex.EncodeToString([]byte(room))
}

// New opens (and creates if needed) a Badger database at dir.
func New(dir string) (*Store, error) {
	db, err := badgerdb.Open(badgerdb.DefaultOptions(dir).WithLoggingLevel(badgerdb.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Append persists one message.
func (s *Store) Append(ctx context.Context, msg core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := fmt.Sprintf("msg:%s:%019d:%s", roomKey(msg.Room), time.Now().UnixNano(), uuid.NewString())
	value, err := json.Marshal(record{Username: msg.From, Text: msg.Text, Time: msg.Time})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("store message: %w", err)
	}
	return nil
}

// Replay scans the room's key prefix. Unlimited replays iterate
// forward; a limit iterates in reverse to find the most recent entries
// and flips them back to oldest-first.
func (s *Store) Replay(ctx context.Context, room string, limit int) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(fmt.Sprintf("msg:%s:", roomKey(room)))
	var values [][]byte

	err := s.db.View(func(txn *badgerdb.Txn) error {
		options := badgerdb.DefaultIteratorOptions
		options.Reverse = limit > 0
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := prefix
		if options.Reverse {
			// Seek past the newest possible key for this room.
			seekKey = append(append([]byte{}, prefix...), 0xff)
		}

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(values) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				values = append(values, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}

	if limit > 0 {
		values = lo.Reverse(values)
	}

	msgs := make([]core.Message, 0, len(values))
	for _, value := range values {
		var rec record
		if err := json.Unmarshal(value, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		msgs = append(msgs, core.Message{
			Room: room,
			From: rec.Username,
			Text: rec.Text,
			Time: rec.Time,
		})
	}
	return msgs, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
