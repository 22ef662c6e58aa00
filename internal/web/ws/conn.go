package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mcoot/trucogame/internal/model"
)

const (
	// Time allowed to write one message to the peer
	writeWait = 10 * time.Second

	// Time between pings sent to the peer
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Conn is one websocket client. Every connection gets its own session.
type Conn struct {
	ws      *websocket.Conn
	room    model.RoomCode
	session model.SessionID
	send    chan any
	logger  *slog.Logger

	closeOnce   sync.Once
	done        chan struct{}
	closeCode   websocket.StatusCode
	closeReason string
}

func newConn(ws *websocket.Conn, room model.RoomCode, session model.SessionID, logger *slog.Logger) *Conn {
	return &Conn{
		ws:      ws,
		room:    room,
		session: session,
		send:    make(chan any, sendBufferSize),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Session returns the connection's session id
func (c *Conn) Session() model.SessionID {
	return c.session
}

// enqueue queues msg without blocking. A client that cannot keep up is
// disconnected.
func (c *Conn) enqueue(msg any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.logger.Warn("ws send buffer full, dropping client",
			slog.String("room_code", string(c.room)),
			slog.String("session", string(c.session)))
		c.close(websocket.StatusPolicyViolation, "too slow")
		return false
	}
}

// writePump owns every write to the socket. It runs until the connection is
// closed, then flushes what is queued on a normal closure and closes the
// socket.
func (c *Conn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(ctx, msg); err != nil {
				c.logger.Debug("ws write failed",
					slog.String("session", string(c.session)),
					slog.String("error", err.Error()))
				c.close(websocket.StatusInternalError, "write failed")
				_ = c.ws.CloseNow()
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.ws.Ping(pctx)
			cancel()
			if err != nil {
				c.close(websocket.StatusGoingAway, "ping failed")
				_ = c.ws.CloseNow()
				return
			}
		case <-c.done:
			if c.closeCode == websocket.StatusNormalClosure {
				c.flush(ctx)
			}
			_ = c.ws.Close(c.closeCode, c.closeReason)
			return
		}
	}
}

func (c *Conn) write(ctx context.Context, msg any) error {
	wctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(wctx, c.ws, msg)
}

func (c *Conn) flush(ctx context.Context) {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(ctx, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

// close asks the write pump to close the socket with code. Only the first
// call takes effect.
func (c *Conn) close(code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.done)
	})
}
