package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nomisrosen/Hash-Chat-2/internal/models"
	"github.com/nomisrosen/Hash-Chat-2/internal/protocol"
	"github.com/nomisrosen/Hash-Chat-2/internal/room"
	"github.com/nomisrosen/Hash-Chat-2/internal/session"
	ws "github.com/nomisrosen/Hash-Chat-2/internal/websocket"
	"github.com/nomisrosen/Hash-Chat-2/pkg/logger"
)

// joinWait bounds how long a fresh connection may sit idle before sending
// its joinRoom frame.
const joinWait = 30 * time.Second

type WebSocketHandlers struct {
	registry      *session.Registry
	hubs          *ws.Manager
	maxFrameBytes int64
	upgrader      websocket.Upgrader
}

func NewWebSocketHandlers(registry *session.Registry, hubs *ws.Manager, maxFrameBytes int64) *WebSocketHandlers {
	return &WebSocketHandlers{
		registry:      registry,
		hubs:          hubs,
		maxFrameBytes: maxFrameBytes,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket upgrades the connection and runs the join handshake: the
// first frame must be a joinRoom event carrying a derived room address. Only
// after the session exists does the connection enter the room's hub.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(h.maxFrameBytes)

	req, err := readJoinRequest(conn)
	if err != nil {
		logger.Debug("Rejecting connection before join: %v", err)
		conn.Close()
		return
	}

	sess := h.registry.Join(uuid.NewString(), req.Room, req.Username)
	hub := h.hubs.GetHubForRoom(req.Room)

	client := ws.NewClient(hub, conn, sess, h.registry)
	hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func readJoinRequest(conn *websocket.Conn) (*models.JoinRequest, error) {
	conn.SetReadDeadline(time.Now().Add(joinWait))
	defer conn.SetReadDeadline(time.Time{})

	_, frame, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	env, err := protocol.Decode(frame)
	if err != nil {
		return nil, err
	}
	if env.Event != protocol.EventJoinRoom {
		return nil, fmt.Errorf("first frame must be %s, got %q", protocol.EventJoinRoom, env.Event)
	}

	var req models.JoinRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		return nil, fmt.Errorf("malformed join request: %w", err)
	}
	if !room.ValidAddress(req.Room) {
		return nil, fmt.Errorf("invalid room address %q", req.Room)
	}
	return &req, nil
}
