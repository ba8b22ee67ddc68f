package session

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinWithDesiredName(t *testing.T) {
	r := NewRegistry()
	sess := r.Join("conn-1", "room-a", "alice")
	require.Equal(t, "alice", sess.Username)
	require.Equal(t, "room-a", sess.Room)
	require.Equal(t, "conn-1", sess.ConnID)

	got, ok := r.Get("conn-1")
	require.True(t, ok)
	require.Equal(t, sess, got)
}

func TestJoinGeneratesPseudonym(t *testing.T) {
	r := NewRegistry()
	pattern := regexp.MustCompile(`^Anonymous [A-Z][a-z]+ [A-Z][a-z]+$`)

	for _, desired := range []string{"", "   ", "\t"} {
		sess := r.Join("conn-1", "room-a", desired)
		require.Regexp(t, pattern, sess.Username)
	}
}

func TestJoinReplacesExistingSession(t *testing.T) {
	r := NewRegistry()
	r.Join("conn-1", "room-a", "alice")
	sess := r.Join("conn-1", "room-b", "bob")

	require.Equal(t, 1, r.Count())
	got, ok := r.Get("conn-1")
	require.True(t, ok)
	require.Equal(t, sess, got)
	require.Equal(t, "room-b", got.Room)
}

func TestDuplicateNamesArePermitted(t *testing.T) {
	r := NewRegistry()
	a := r.Join("conn-1", "room-a", "alice")
	b := r.Join("conn-2", "room-a", "alice")
	require.Equal(t, a.Username, b.Username)
	require.Equal(t, 2, r.Count())
}

func TestLeaveRemovesSession(t *testing.T) {
	r := NewRegistry()
	r.Join("conn-1", "room-a", "alice")

	sess, ok := r.Leave("conn-1")
	require.True(t, ok)
	require.Equal(t, "alice", sess.Username)
	require.Equal(t, 0, r.Count())

	_, ok = r.Get("conn-1")
	require.False(t, ok)
}

func TestLeaveWithoutJoinIsNoOp(t *testing.T) {
	r := NewRegistry()
	sess, ok := r.Leave("never-joined")
	require.False(t, ok)
	require.Nil(t, sess)
}

func TestGenerateUsernameDrawsFromWordLists(t *testing.T) {
	adj := make(map[string]bool)
	for _, a := range adjectives {
		adj[a] = true
	}
	animal := make(map[string]bool)
	for _, a := range animals {
		animal[a] = true
	}

	pattern := regexp.MustCompile(`^Anonymous (\S+) (\S+)$`)
	for i := 0; i < 100; i++ {
		m := pattern.FindStringSubmatch(GenerateUsername())
		require.NotNil(t, m)
		require.True(t, adj[m[1]], "unknown adjective %q", m[1])
		require.True(t, animal[m[2]], "unknown animal %q", m[2])
	}
}
