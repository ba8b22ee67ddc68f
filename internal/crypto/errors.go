package crypto

import "errors"

var (
	// ErrNotReady means Encrypt or Decrypt was called before DeriveKey, or
	// after Clear. Reachable only through a programming error: the engine is
	// always keyed as part of joining a room.
	ErrNotReady = errors.New("encryption key not derived")

	// ErrDecryptionFailed means the GCM authentication tag did not verify
	// (wrong phrase, or a corrupted or tampered payload) or the inputs were
	// not valid base64.
	ErrDecryptionFailed = errors.New("failed to decrypt message: wrong key or corrupted data")
)
