// Package history keeps the bounded, in-memory record of recent messages per
// room. Nothing is ever written to disk; a restart forgets everything.
package history

import (
	"sync"

	"github.com/nomisrosen/Hash-Chat-2/internal/models"
)

// DefaultLimit is the per-room message cap.
const DefaultLimit = 100

// Buffer holds one room's messages in receipt order, evicting the oldest
// once the limit is reached. It is not safe for concurrent use: each buffer
// is owned and mutated by its room's hub goroutine only.
type Buffer struct {
	limit int
	msgs  []models.Message
}

func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Buffer{limit: limit}
}

// Append stores a message, dropping from the front if over the limit.
func (b *Buffer) Append(msg models.Message) {
	b.msgs = append(b.msgs, msg)
	if excess := len(b.msgs) - b.limit; excess > 0 {
		b.msgs = append(b.msgs[:0], b.msgs[excess:]...)
	}
}

// Messages returns the buffered messages oldest first. The returned slice is
// a copy, safe to hand to a marshaller while the buffer keeps growing.
func (b *Buffer) Messages() []models.Message {
	out := make([]models.Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}

func (b *Buffer) Len() int {
	return len(b.msgs)
}

// Store hands out per-room buffers, creating them lazily on first use. Rooms
// are never expired: history must survive a room going empty for the process
// lifetime.
type Store struct {
	mu    sync.Mutex
	limit int
	rooms map[string]*Buffer
}

func NewStore(limit int) *Store {
	return &Store{
		limit: limit,
		rooms: make(map[string]*Buffer),
	}
}

// Room returns the buffer for a room address, creating it if absent. The
// same address always maps to the same buffer.
func (s *Store) Room(address string) *Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.rooms[address]
	if !ok {
		buf = NewBuffer(s.limit)
		s.rooms[address] = buf
	}
	return buf
}

// RoomCount reports how many rooms have been created so far.
func (s *Store) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
