package websocket

import (
	"sync"

	"github.com/nomisrosen/Hash-Chat-2/internal/history"
)

// Manager hands out one hub per room address, creating them lazily on first
// join. Hubs are never expired: their history buffers must outlive empty
// rooms for the process lifetime.
type Manager struct {
	mu    sync.Mutex
	hubs  map[string]*Hub
	store *history.Store
}

func NewManager(store *history.Store) *Manager {
	return &Manager{
		hubs:  make(map[string]*Hub),
		store: store,
	}
}

// GetHubForRoom returns the hub for a room address, starting it if needed.
func (m *Manager) GetHubForRoom(address string) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, exists := m.hubs[address]
	if !exists {
		hub = NewHub(address, m.store.Room(address))
		m.hubs[address] = hub
		go hub.Run()
	}
	return hub
}

// Shutdown stops every hub. Used on server shutdown only.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, hub := range m.hubs {
		hub.ShutdownHub()
	}
}
