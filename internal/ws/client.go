package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"skirmish/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client is one authenticated connection. UserID comes from the token
// checked at upgrade time and is the sender of every command it reads.
type Client struct {
	UserID int64
	Conn   *websocket.Conn
	Send   chan []byte

	Hub  *Hub
	Room *Room
	Done chan struct{}

	mu     sync.Mutex
	closed bool
	log    *slog.Logger
}

func NewClient(userID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		Hub:    hub,
		Done:   make(chan struct{}),
		log:    logger.With("user", userID),
	}
}

// Run serves the connection until it closes.
func (c *Client) Run() {
	go c.writePump()
	c.queueMessage(Message{Type: MsgReady})

	c.Room = c.Hub.AssignClient(c)
	if c.Room == nil {
		c.queueMessage(Message{Type: MsgError, Payload: ErrorPayload{Message: "already connected"}})
		c.closeSend()
		close(c.Done)
		return
	}
	c.log.Debug("assigned to room", "room", c.Room.ID)

	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.disconnect()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "error", err)
			}
			return
		}

		typ, cmd, err := decodeFrame(raw)
		if err != nil {
			c.log.Debug("bad frame", "error", err)
			CommandsTotal.WithLabelValues(typ, "malformed").Inc()
			c.queueMessage(Message{Type: MsgError, Payload: ErrorPayload{Message: err.Error()}})
			continue
		}
		if typ == MsgPing {
			c.queueMessage(Message{Type: MsgPong})
			continue
		}
		if !c.allow() {
			CommandsTotal.WithLabelValues(string(cmd.Kind), "throttled").Inc()
			continue
		}
		c.Room.HandleCommand(c, cmd)
	}
}

func (c *Client) allow() bool {
	if c.Hub.limiter == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return c.Hub.limiter.Allow(ctx, c.UserID)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("write error", "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// queue hands a frame to the write pump without blocking. A client whose
// buffer is full is dropped.
func (c *Client) queue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		c.log.Warn("send buffer full, dropping client")
		c.closed = true
		close(c.Send)
		return false
	}
}

func (c *Client) queueMessage(msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal message", "type", msg.Type, "error", err)
		return false
	}
	return c.queue(data)
}

// closeSend flushes queued frames and closes the connection.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) disconnect() {
	if c.Room != nil {
		c.Hub.OnDisconnect(c)
	}
	_ = c.Conn.Close()
}
