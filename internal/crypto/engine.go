// Package crypto implements the client-side symmetric encryption layer.
// Message bodies are sealed with AES-256-GCM under a key stretched from the
// room's secret phrase, so the server only ever forwards opaque ciphertext.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/nomisrosen/Hash-Chat-2/internal/models"
)

const (
	keySize    = 32
	saltSize   = 16
	iterations = 100000
)

// Engine holds the symmetric key for one room session. It starts unkeyed;
// DeriveKey readies it and Clear unkeys it again. Each Engine belongs to a
// single room session and is discarded with it, never shared across rooms.
//
// Every DeriveKey and Clear bumps a generation counter. Decrypt reports the
// generation of the key it used, so a caller that switched rooms while a
// decrypt was in flight can detect the stale result and discard it instead
// of rendering it into the wrong transcript.
type Engine struct {
	mu   sync.Mutex
	aead cipher.AEAD
	gen  uint64
}

func NewEngine() *Engine {
	return &Engine{}
}

// DeriveKey stretches the phrase into a 256-bit AES-GCM key with PBKDF2
// (SHA-256, 100000 iterations). The salt is the first 16 bytes of
// SHA-256(phrase): deterministic, so independent clients holding the same
// phrase derive the identical key with no salt exchange. Returns the new
// key generation.
func (e *Engine) DeriveKey(phrase string) (uint64, error) {
	sum := sha256.Sum256([]byte(phrase))
	key := pbkdf2.Key([]byte(phrase), sum[:saltSize], iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return 0, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return 0, fmt.Errorf("failed to create GCM: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.aead = aead
	e.gen++
	return e.gen, nil
}

// Ready reports whether a key is currently held.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aead != nil
}

// Generation returns the current key generation. Zero means no key has ever
// been derived.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// Encrypt seals plaintext under the current key with a fresh random 96-bit
// IV. The IV is never reused for a given key; reuse would break AES-GCM
// entirely. Returns ErrNotReady if no key is held.
func (e *Engine) Encrypt(plaintext string) (*models.EncryptedPayload, error) {
	e.mu.Lock()
	aead := e.aead
	e.mu.Unlock()
	if aead == nil {
		return nil, ErrNotReady
	}

	iv := make([]byte, aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	ciphertext := aead.Seal(nil, iv, []byte(plaintext), nil)
	return &models.EncryptedPayload{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// Decrypt opens a base64 ciphertext/IV pair and returns the plaintext along
// with the generation of the key that produced it. Authentication failure and
// bad base64 both surface as ErrDecryptionFailed; the caller renders a
// placeholder and moves on, the pipeline never stops.
func (e *Engine) Decrypt(ciphertext, iv string) (string, uint64, error) {
	e.mu.Lock()
	aead := e.aead
	gen := e.gen
	e.mu.Unlock()
	if aead == nil {
		return "", gen, ErrNotReady
	}

	ct, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", gen, ErrDecryptionFailed
	}
	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(nonce) != aead.NonceSize() {
		return "", gen, ErrDecryptionFailed
	}

	plaintext, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", gen, ErrDecryptionFailed
	}
	return string(plaintext), gen, nil
}

// Clear drops the key, returning the engine to its unkeyed state. Called on
// room leave so the key does not outlive the session.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aead = nil
	e.gen++
}
