package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// Hub tracks connected scoreboard clients and fans committed state out to
// all of them.
type Hub struct {
	mu      sync.Mutex
	clients map[*WSClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*WSClient]struct{})}
}

func (h *Hub) register(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Broadcast queues a response for every connected client. Clients with a
// full send buffer are skipped rather than blocking the board.
func (h *Hub) Broadcast(resp WSResponse) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.sendChan <- resp:
		default:
		}
	}
}

// WSClient represents a connected WebSocket client.
type WSClient struct {
	conn     *websocket.Conn
	board    *Board
	hub      *Hub
	logger   *slog.Logger
	sendChan chan WSResponse
}

// HandleWebSocket upgrades the connection and serves scoreboard messages
// until the client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	client := &WSClient{
		conn:     conn,
		board:    s.board,
		hub:      s.hub,
		logger:   s.logger,
		sendChan: make(chan WSResponse, 256),
	}
	s.hub.register(client)
	go client.writePump()

	// New clients immediately see the committed board.
	client.sendChan <- WSResponse{Type: "state", Payload: s.board.State()}
	client.readPump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		close(c.sendChan)
		c.conn.Close()
	}()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	ctx := context.Background()
	switch msg.Type {
	case "preview":
		c.handlePreview(msg)
	case "confirm":
		c.handleConfirm(ctx, msg)
	case "undo":
		if state, ok := c.board.Undo(ctx); ok {
			c.hub.Broadcast(WSResponse{Type: "state", ID: msg.ID, Payload: state})
		}
	case "redo":
		if state, ok := c.board.Redo(ctx); ok {
			c.hub.Broadcast(WSResponse{Type: "state", ID: msg.ID, Payload: state})
		}
	case "edit_round":
		c.handleEditRound(ctx, msg)
	case "reset":
		c.handleReset(ctx, msg)
	case "rename":
		c.handleRename(ctx, msg)
	case "ping":
		c.sendChan <- WSResponse{Type: "pong", ID: msg.ID}
	default:
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type"}
	}
}

func (c *WSClient) handlePreview(msg WSMessage) {
	var form SettlementForm
	if err := json.Unmarshal(msg.Payload, &form); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	pv, err := c.board.Preview(form)
	if err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		return
	}
	c.sendChan <- WSResponse{Type: "preview", ID: msg.ID, Payload: pv}
}

func (c *WSClient) handleConfirm(ctx context.Context, msg WSMessage) {
	var form SettlementForm
	if err := json.Unmarshal(msg.Payload, &form); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	state, err := c.board.Confirm(ctx, form)
	if err != nil {
		c.logger.Warn("Settlement rejected", "error", err)
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		return
	}
	c.hub.Broadcast(WSResponse{Type: "state", ID: msg.ID, Payload: state})
}

func (c *WSClient) handleEditRound(ctx context.Context, msg WSMessage) {
	var form EditRoundForm
	if err := json.Unmarshal(msg.Payload, &form); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	state := c.board.EditRound(ctx, form)
	c.hub.Broadcast(WSResponse{Type: "state", ID: msg.ID, Payload: state})
}

func (c *WSClient) handleReset(ctx context.Context, msg WSMessage) {
	var form ResetForm
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &form); err != nil {
			c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
			return
		}
	}
	state := c.board.Reset(ctx, form)
	c.hub.Broadcast(WSResponse{Type: "state", ID: msg.ID, Payload: state})
}

func (c *WSClient) handleRename(ctx context.Context, msg WSMessage) {
	var form RenameForm
	if err := json.Unmarshal(msg.Payload, &form); err != nil {
		c.sendChan <- WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		return
	}
	state := c.board.Rename(ctx, form)
	c.hub.Broadcast(WSResponse{Type: "state", ID: msg.ID, Payload: state})
}
