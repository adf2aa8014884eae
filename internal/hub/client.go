package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Clients only receive; the read
	// loop exists to detect disconnects and answer pings.
	maxMessageSize = 512

	// Per-client send buffer. A client that falls this far behind is pruned.
	sendBufferSize = 32
)

// Client is one live connection bound to a single table room.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	roomID    string
	userID    int64
	nickname  string
	send      chan []byte
	closeOnce sync.Once
}

// NewClient wraps an upgraded websocket connection. The caller joins it to
// the hub and starts Run.
func NewClient(h *Hub, conn *websocket.Conn, roomID string, userID int64, nickname string) *Client {
	return &Client{
		hub:      h,
		conn:     conn,
		roomID:   roomID,
		userID:   userID,
		nickname: nickname,
		send:     make(chan []byte, sendBufferSize),
	}
}

// Run starts the read and write pumps. It returns immediately; the pumps own
// all connection I/O from here on.
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

// enqueue attempts a non-blocking delivery into the client's send buffer.
// Only the hub calls this, while holding the room lock, which guarantees no
// enqueue can race the channel close in close().
func (c *Client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close shuts down the write pump. Must only be called after the client has
// been removed from its room.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump discards inbound frames and watches for disconnect. On exit the
// client leaves its room, so a dead connection never lingers as a member.
func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error",
					slog.String("room", c.roomID), slog.Int64("user_id", c.userID), slog.Any("error", err))
			}
			return
		}
	}
}

// writePump drains the send buffer onto the wire and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("websocket write failed",
					slog.String("room", c.roomID), slog.Int64("user_id", c.userID), slog.Any("error", err))
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
