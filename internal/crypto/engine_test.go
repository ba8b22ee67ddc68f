package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripAcrossIndependentDerivations(t *testing.T) {
	// Two engines deriving from the same phrase stand in for two clients
	// that never exchanged anything but the phrase itself.
	sender := NewEngine()
	_, err := sender.DeriveKey("red-panda")
	require.NoError(t, err)

	receiver := NewEngine()
	_, err = receiver.DeriveKey("red-panda")
	require.NoError(t, err)

	payload, err := sender.Encrypt("hello")
	require.NoError(t, err)

	plaintext, _, err := receiver.Decrypt(payload.Ciphertext, payload.IV)
	require.NoError(t, err)
	require.Equal(t, "hello", plaintext)
}

func TestDecryptWithWrongPhraseFails(t *testing.T) {
	sender := NewEngine()
	_, err := sender.DeriveKey("red-panda")
	require.NoError(t, err)

	payload, err := sender.Encrypt("hello")
	require.NoError(t, err)

	wrong := NewEngine()
	_, err = wrong.DeriveKey("red-pandas")
	require.NoError(t, err)

	_, _, err = wrong.Decrypt(payload.Ciphertext, payload.IV)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptTamperedCiphertextFails(t *testing.T) {
	e := NewEngine()
	_, err := e.DeriveKey("red-panda")
	require.NoError(t, err)

	payload, err := e.Encrypt("hello")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(payload.Ciphertext)
	require.NoError(t, err)
	raw[0] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, _, err = e.Decrypt(tampered, payload.IV)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptBadBase64Fails(t *testing.T) {
	e := NewEngine()
	_, err := e.DeriveKey("red-panda")
	require.NoError(t, err)

	_, _, err = e.Decrypt("not base64!!!", "also not base64!!!")
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestUnkeyedEngineRefuses(t *testing.T) {
	e := NewEngine()
	require.False(t, e.Ready())

	_, err := e.Encrypt("hello")
	require.ErrorIs(t, err, ErrNotReady)

	_, _, err = e.Decrypt("", "")
	require.ErrorIs(t, err, ErrNotReady)
}

func TestFreshIVPerEncrypt(t *testing.T) {
	e := NewEngine()
	_, err := e.DeriveKey("red-panda")
	require.NoError(t, err)

	ivs := make(map[string]bool)
	cts := make(map[string]bool)
	for i := 0; i < 200; i++ {
		payload, err := e.Encrypt("same plaintext every time")
		require.NoError(t, err)
		require.False(t, ivs[payload.IV], "IV reused")
		require.False(t, cts[payload.Ciphertext], "ciphertext repeated")
		ivs[payload.IV] = true
		cts[payload.Ciphertext] = true
	}
}

func TestClearDropsKey(t *testing.T) {
	e := NewEngine()
	_, err := e.DeriveKey("red-panda")
	require.NoError(t, err)
	require.True(t, e.Ready())

	e.Clear()
	require.False(t, e.Ready())

	_, err = e.Encrypt("hello")
	require.ErrorIs(t, err, ErrNotReady)
}

func TestGenerationTracksKeyLifecycle(t *testing.T) {
	e := NewEngine()
	require.EqualValues(t, 0, e.Generation())

	gen1, err := e.DeriveKey("red-panda")
	require.NoError(t, err)
	require.EqualValues(t, 1, gen1)

	payload, err := e.Encrypt("hello")
	require.NoError(t, err)

	_, gen, err := e.Decrypt(payload.Ciphertext, payload.IV)
	require.NoError(t, err)
	require.Equal(t, gen1, gen)

	// After a clear, a late decrypt reports a newer generation; a caller
	// still holding gen1 knows the result belongs to a dead session.
	e.Clear()
	_, gen, err = e.Decrypt(payload.Ciphertext, payload.IV)
	require.Error(t, err)
	require.NotEqual(t, gen1, gen)
}

func TestReDeriveReplacesKey(t *testing.T) {
	e := NewEngine()
	gen1, err := e.DeriveKey("room-one")
	require.NoError(t, err)

	payload, err := e.Encrypt("hello")
	require.NoError(t, err)

	gen2, err := e.DeriveKey("room-two")
	require.NoError(t, err)
	require.Greater(t, gen2, gen1)

	// old ciphertext no longer opens
	_, _, err = e.Decrypt(payload.Ciphertext, payload.IV)
	require.ErrorIs(t, err, ErrDecryptionFailed)

	// re-deriving the original phrase recovers it
	_, err = e.DeriveKey("room-one")
	require.NoError(t, err)
	plaintext, _, err := e.Decrypt(payload.Ciphertext, payload.IV)
	require.NoError(t, err)
	require.Equal(t, "hello", plaintext)
}
