package notifications

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ground-truth/land-portal/land-portal-backend/internal/capture"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

// Event is the wire format pushed to connected dashboards.
type Event struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

const (
	EventCaptureStatus = "capture.status"
	EventNewInquiry    = "inquiry.new"
)

// Connection is one websocket client. Clients may subscribe to specific
// parcel ids; an empty subscription receives everything.
type Connection struct {
	id      uuid.UUID
	conn    *websocket.Conn
	send    chan Event
	parcels map[uuid.UUID]bool
	mu      sync.Mutex
}

func (c *Connection) wantsParcel(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.parcels) == 0 {
		return true
	}
	return c.parcels[id]
}

// Hub owns all live connections and fans events out to them.
type Hub struct {
	connections map[*Connection]bool
	mu          sync.RWMutex
	broadcast   chan Event
	register    chan *Connection
	unregister  chan *Connection
	stop        chan struct{}
	upgrader    websocket.Upgrader
	logger      *zap.Logger
	once        sync.Once
}

func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		connections: make(map[*Connection]bool),
		broadcast:   make(chan Event, sendBuffer),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		stop:        make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			h.mu.Unlock()
			h.logger.Debug("websocket connected", zap.String("connection_id", conn.id.String()))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.connections {
				select {
				case conn.send <- event:
				default:
					// Slow consumer, drop the event for this client.
				}
			}
			h.mu.RUnlock()

		case <-h.stop:
			h.mu.Lock()
			for conn := range h.connections {
				close(conn.send)
				delete(h.connections, conn)
			}
			h.mu.Unlock()
			return
		}
	}
}

// HandleConnection upgrades an HTTP request and starts the read/write
// pumps for the new client.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	conn := &Connection{
		id:      uuid.New(),
		conn:    ws,
		send:    make(chan Event, sendBuffer),
		parcels: make(map[uuid.UUID]bool),
	}
	h.register <- conn

	go h.readPump(conn)
	go h.writePump(conn)
	return nil
}

// subscribeMessage is the only inbound message clients send: the
// parcel ids they want capture status for.
type subscribeMessage struct {
	ParcelIDs []string `json:"parcel_ids"`
}

func (h *Hub) readPump(conn *Connection) {
	defer func() {
		h.unregister <- conn
		conn.conn.Close()
	}()

	conn.conn.SetReadLimit(maxMessageSize)
	conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.conn.SetPongHandler(func(string) error {
		conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg subscribeMessage
		if err := conn.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		parcels := make(map[uuid.UUID]bool, len(msg.ParcelIDs))
		for _, raw := range msg.ParcelIDs {
			if id, err := uuid.Parse(raw); err == nil {
				parcels[id] = true
			}
		}
		conn.mu.Lock()
		conn.parcels = parcels
		conn.mu.Unlock()
	}
}

func (h *Hub) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.conn.Close()
	}()

	for {
		select {
		case event, ok := <-conn.send:
			conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			conn.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Publish implements capture.StatusSink. Capture status only reaches
// clients subscribed to that parcel.
func (h *Hub) Publish(event capture.StatusEvent) {
	wire := Event{
		Type: EventCaptureStatus,
		Data: map[string]interface{}{
			"parcel_id":   event.ParcelID.String(),
			"kind":        string(event.Kind),
			"message":     event.Message,
			"accuracy":    event.Accuracy,
			"point_count": event.PointCount,
		},
		Timestamp: time.Now(),
	}

	h.mu.RLock()
	for conn := range h.connections {
		if !conn.wantsParcel(event.ParcelID) {
			continue
		}
		select {
		case conn.send <- wire:
		default:
		}
	}
	h.mu.RUnlock()
}

// NotifyInquiry broadcasts a new-inquiry event to every client.
func (h *Hub) NotifyInquiry(listingID, inquiryID uuid.UUID, buyerName string) {
	select {
	case h.broadcast <- Event{
		Type: EventNewInquiry,
		Data: map[string]interface{}{
			"listing_id": listingID.String(),
			"inquiry_id": inquiryID.String(),
			"buyer_name": buyerName,
		},
		Timestamp: time.Now(),
	}:
	default:
		h.logger.Warn("broadcast channel full, dropping inquiry event")
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Close shuts down the hub and disconnects all clients.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.stop) })
}
