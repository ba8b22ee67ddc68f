package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nomisrosen/Hash-Chat-2/internal/models"
)

func textMessage(t *testing.T, n int) models.Message {
	t.Helper()
	return models.NewMessage("alice", models.KindText, []byte(fmt.Sprintf("%q", fmt.Sprintf("message %d", n))))
}

func TestEmptyBuffer(t *testing.T) {
	b := NewBuffer(100)
	require.Equal(t, 0, b.Len())
	require.Empty(t, b.Messages())
	require.NotNil(t, b.Messages())
}

func TestAppendKeepsOrder(t *testing.T) {
	b := NewBuffer(100)
	for i := 1; i <= 5; i++ {
		b.Append(textMessage(t, i))
	}
	msgs := b.Messages()
	require.Len(t, msgs, 5)
	require.JSONEq(t, `"message 1"`, string(msgs[0].Payload))
	require.JSONEq(t, `"message 5"`, string(msgs[4].Payload))
}

func TestEvictionDropsOldestFirst(t *testing.T) {
	b := NewBuffer(100)
	for i := 1; i <= 101; i++ {
		b.Append(textMessage(t, i))
	}

	msgs := b.Messages()
	require.Len(t, msgs, 100)
	// the 101st append evicts message 1; the front is now message 2
	require.JSONEq(t, `"message 2"`, string(msgs[0].Payload))
	require.JSONEq(t, `"message 101"`, string(msgs[99].Payload))
}

func TestCapHoldsUnderSustainedLoad(t *testing.T) {
	b := NewBuffer(100)
	for i := 1; i <= 1000; i++ {
		b.Append(textMessage(t, i))
		require.LessOrEqual(t, b.Len(), 100)
	}
	msgs := b.Messages()
	require.JSONEq(t, `"message 901"`, string(msgs[0].Payload))
	require.JSONEq(t, `"message 1000"`, string(msgs[99].Payload))
}

func TestMessagesReturnsCopy(t *testing.T) {
	b := NewBuffer(100)
	b.Append(textMessage(t, 1))

	snapshot := b.Messages()
	b.Append(textMessage(t, 2))
	require.Len(t, snapshot, 1)
	require.Equal(t, 2, b.Len())
}

func TestZeroLimitFallsBackToDefault(t *testing.T) {
	b := NewBuffer(0)
	for i := 1; i <= DefaultLimit+10; i++ {
		b.Append(textMessage(t, i))
	}
	require.Equal(t, DefaultLimit, b.Len())
}

func TestStoreCreatesRoomsLazily(t *testing.T) {
	s := NewStore(100)
	require.Equal(t, 0, s.RoomCount())

	a := s.Room("aaaa")
	require.Equal(t, 1, s.RoomCount())
	require.Equal(t, 0, a.Len())

	// same address, same buffer
	a.Append(textMessage(t, 1))
	require.Equal(t, 1, s.Room("aaaa").Len())
	require.Equal(t, 1, s.RoomCount())

	// a different address gets its own buffer
	require.Equal(t, 0, s.Room("bbbb").Len())
	require.Equal(t, 2, s.RoomCount())
}
