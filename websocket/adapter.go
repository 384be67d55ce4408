package websocket

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/LucaMelis0/secure-chat/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// ErrBufferFull reports a peer that cannot drain its send queue. The
// frame becomes a delivery failure for that recipient only; the manager
// must never block on a slow consumer.
var ErrBufferFull = errors.New("send buffer full")

// Conn adapts a gorilla/websocket connection to domain.Connection. The
// id comes from the client's handshake, the username from the verified
// session token.
type Conn struct {
	id       string
	username string
	ws       *websocket.Conn
	send     chan []byte
	manager  domain.SessionManager
	handler  domain.MessageHandler
}

func NewConn(id, username string, ws *websocket.Conn, sendBuffer int,
	manager domain.SessionManager, handler domain.MessageHandler) *Conn {
	return &Conn{
		id:       id,
		username: username,
		ws:       ws,
		send:     make(chan []byte, sendBuffer),
		manager:  manager,
		handler:  handler,
	}
}

func (c *Conn) ID() string       { return c.id }
func (c *Conn) Username() string { return c.username }

func (c *Conn) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

// CloseWithReason writes a close frame before tearing the socket down so
// the client sees a distinct reason code.
func (c *Conn) CloseWithReason(code int, reason string) error {
	deadline := time.Now().Add(writeWait)
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), deadline)
	return c.ws.Close()
}

// Start runs the read and write pumps. The caller must have admitted the
// connection through the manager first.
func (c *Conn) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		if v := recover(); v != nil {
			slog.Error("connection handler panic", "clientId", c.id, "panic", v)
			_ = c.CloseWithReason(websocket.CloseInternalServerErr, "internal error")
		}
		c.manager.Disconnect(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "clientId", c.id, "error", err)
			}
			return
		}

		c.handler.Handle(c, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
