package v1

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vietanh2810/election-admin/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 32
	broadcastSize  = 256
)

// The default CheckOrigin only accepts same-origin upgrades.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type eventClient struct {
	conn       *websocket.Conn
	send       chan []byte
	electionID uint
}

// EventHub fans election events out to the owners watching them.
type EventHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*eventClient]struct{}

	broadcast  chan domain.ElectionEvent
	register   chan *eventClient
	unregister chan *eventClient
	done       chan struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{
		clients:    make(map[uint]map[*eventClient]struct{}),
		broadcast:  make(chan domain.ElectionEvent, broadcastSize),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		done:       make(chan struct{}),
	}
}

// Publish queues event for delivery. It never blocks the caller; events are
// dropped when the queue is full.
func (h *EventHub) Publish(event domain.ElectionEvent) {
	select {
	case h.broadcast <- event:
	default:
		zap.L().Warn("event hub queue full, dropping event",
			zap.String("type", string(event.Type)),
			zap.Uint("election_id", event.ElectionID),
		)
	}
}

// Subscribers returns the number of clients watching electionID.
func (h *EventHub) Subscribers(electionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[electionID])
}

// Run serves register, unregister and broadcast requests until ctx is done.
func (h *EventHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for electionID, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, electionID)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.electionID] == nil {
				h.clients[client.electionID] = make(map[*eventClient]struct{})
			}
			h.clients[client.electionID][client] = struct{}{}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *EventHub) deliver(event domain.ElectionEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("failed to encode election event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[event.ElectionID] {
		select {
		case client.send <- message:
		default:
			h.remove(client)
		}
	}

	// Nothing more will happen to a deleted election.
	if event.Type == domain.EventElectionDeleted {
		for client := range h.clients[event.ElectionID] {
			h.remove(client)
		}
	}
}

// remove must be called with h.mu held.
func (h *EventHub) remove(client *eventClient) {
	clients, ok := h.clients[client.electionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.electionID)
	}
}

type EventHandler struct {
	hub  *EventHub
	svc  ElectionService
	uSvc UserService
}

func NewEventHandler(hub *EventHub, svc ElectionService, uSvc UserService) *EventHandler {
	return &EventHandler{
		hub:  hub,
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleEvents godoc
// @Summary      Watch an election
// @Description  Upgrades to a websocket that receives a JSON message for every change to the election.
// @Tags         elections
// @Param        electionID  path  int  true  "Election ID"
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /election/{electionID}/events [get]
// @Security     SessionCookie
func (h *EventHandler) HandleEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		renderErr(ctx, respErr, nil, gin.MIMEJSON)
		return
	}

	electionID, respErr := parseID(ctx, "electionID")
	if respErr != nil {
		renderErr(ctx, respErr, &user, gin.MIMEJSON)
		return
	}

	if _, err := h.svc.GetElection(ctx.Request.Context(), user, electionID); err != nil {
		renderErr(ctx, electionErr(ctx, err, "HandleEvents -> h.svc.GetElection"), &user, gin.MIMEJSON)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// The upgrader has already answered the client.
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &eventClient{
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		electionID: electionID,
	}
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h.hub)
}

func (c *eventClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only handles control frames. The feed is one way.
func (c *eventClient) readPump(hub *EventHub) {
	defer func() {
		select {
		case hub.unregister <- c:
		case <-hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("event client closed", zap.Error(err))
			}
			return
		}
	}
}
