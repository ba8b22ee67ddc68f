// Package client implements the multi-room chat client: the set of opened
// rooms, the single active subscription, and the per-room encryption
// lifecycle around it.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nomisrosen/Hash-Chat-2/internal/room"
)

var (
	ErrNoActiveRoom  = errors.New("no active room")
	ErrUnknownRoom   = errors.New("room is not in the open set")
	ErrImageTooLarge = errors.New("image exceeds the size ceiling")
)

// RoomHandle is an entry in the open-room set. Label is the phrase as the
// user typed it: it names the room in the UI and is the secret the address
// and key are re-derived from on every activation.
type RoomHandle struct {
	Address string
	Label   string
}

type dialFunc func(ctx context.Context, serverURL, phrase, username string, handler Handler) (*roomSession, error)

// Controller tracks every room the user has opened and which one is live.
// Only the active room holds a connection and a derived key; switching away
// tears both down before the next room comes up.
type Controller struct {
	serverURL     string
	username      string
	maxImageBytes int
	handler       Handler
	dial          dialFunc

	mu     sync.Mutex
	rooms  []RoomHandle
	active *roomSession
}

// NewController builds a controller for one user against one server. An
// empty username lets the server assign a pseudonym per join.
func NewController(serverURL, username string, maxImageBytes int, handler Handler) *Controller {
	return &Controller{
		serverURL:     serverURL,
		username:      username,
		maxImageBytes: maxImageBytes,
		handler:       handler,
		dial:          dialRoom,
	}
}

// Open adds the phrase's room to the open set if it is not there yet, then
// makes it the active room. Reopening a known room never duplicates it.
func (c *Controller) Open(ctx context.Context, phrase string) (RoomHandle, error) {
	address := room.DeriveAddress(phrase)

	c.mu.Lock()
	handle, ok := c.findLocked(address)
	if !ok {
		handle = RoomHandle{Address: address, Label: phrase}
		c.rooms = append(c.rooms, handle)
	}
	c.mu.Unlock()

	if err := c.activate(ctx, handle); err != nil {
		return RoomHandle{}, err
	}
	return handle, nil
}

// Switch re-activates a room already in the open set.
func (c *Controller) Switch(ctx context.Context, address string) error {
	c.mu.Lock()
	handle, ok := c.findLocked(address)
	c.mu.Unlock()
	if !ok {
		return ErrUnknownRoom
	}
	return c.activate(ctx, handle)
}

// activate tears down the previous subscription (clearing its key), then
// re-derives address and key from the handle's phrase and resubscribes.
// History replays as part of the join.
func (c *Controller) activate(ctx context.Context, handle RoomHandle) error {
	c.mu.Lock()
	if c.active != nil && c.active.address == handle.Address {
		c.mu.Unlock()
		return nil
	}
	prev := c.active
	c.active = nil
	c.mu.Unlock()

	if prev != nil {
		prev.close()
	}

	sess, err := c.dial(ctx, c.serverURL, handle.Label, c.username, c.handler)
	if err != nil {
		return fmt.Errorf("failed to activate room: %w", err)
	}

	c.mu.Lock()
	c.active = sess
	c.mu.Unlock()
	return nil
}

// Leave deactivates the current room: the connection drops and the key is
// cleared. The room stays in the open set; only Close forgets it. That is a
// deliberate policy, leaving is "step away", not "tear the room out".
func (c *Controller) Leave() {
	c.mu.Lock()
	prev := c.active
	c.active = nil
	c.mu.Unlock()

	if prev != nil {
		prev.close()
	}
}

// Close removes a room from the open set, leaving it first if it is active.
func (c *Controller) Close(address string) error {
	c.mu.Lock()
	idx := -1
	for i, h := range c.rooms {
		if h.Address == address {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return ErrUnknownRoom
	}
	c.rooms = append(c.rooms[:idx], c.rooms[idx+1:]...)
	prev := c.active
	if prev != nil && prev.address == address {
		c.active = nil
	} else {
		prev = nil
	}
	c.mu.Unlock()

	if prev != nil {
		prev.close()
	}
	return nil
}

// Rooms returns the open set in the order rooms were first opened.
func (c *Controller) Rooms() []RoomHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RoomHandle, len(c.rooms))
	copy(out, c.rooms)
	return out
}

// ActiveAddress reports the active room, if any.
func (c *Controller) ActiveAddress() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", false
	}
	return c.active.address, true
}

// SendText encrypts and sends a text message to the active room.
func (c *Controller) SendText(text string) error {
	sess, err := c.activeSession()
	if err != nil {
		return err
	}
	return sess.sendText(text)
}

// SendImage sends an image data-URI to the active room. Oversized images are
// rejected here, before anything reaches the wire. Images travel unencrypted;
// an accepted limitation of the current protocol, not an accident.
func (c *Controller) SendImage(dataURI string) error {
	if len(dataURI) > c.maxImageBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(dataURI), c.maxImageBytes)
	}
	sess, err := c.activeSession()
	if err != nil {
		return err
	}
	return sess.sendImage(dataURI)
}

// Typing signals typing presence to the active room. Fire-and-forget.
func (c *Controller) Typing(on bool) error {
	sess, err := c.activeSession()
	if err != nil {
		return err
	}
	return sess.sendPresence(on)
}

func (c *Controller) activeSession() (*roomSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil, ErrNoActiveRoom
	}
	return c.active, nil
}

func (c *Controller) findLocked(address string) (RoomHandle, bool) {
	for _, h := range c.rooms {
		if h.Address == address {
			return h, true
		}
	}
	return RoomHandle{}, false
}
