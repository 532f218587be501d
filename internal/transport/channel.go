// Package transport carries wire frames between the relay and a session
// over a websocket. It moves bytes only; framing semantics live in
// internal/protocol and dispatch in internal/session.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/roach88/mirrorpad/internal/protocol"
)

// FrameHandler receives one raw inbound frame. Returning false stops the
// read loop; the session returns false once it has terminated.
type FrameHandler func(raw []byte) bool

// Channel is a JSON duplex connection to the relay. Reads happen on the
// ReadLoop goroutine; writes may come from any goroutine and are
// serialized by a mutex, since a websocket connection supports one
// concurrent writer.
type Channel struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the relay at url (ws:// or wss://).
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Channel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}
	logger.Info("relay connected", "url", url)
	return &Channel{conn: conn, logger: logger}, nil
}

// Send serializes and writes one outbound message. Safe for concurrent
// use.
func (c *Channel) Send(m *protocol.Message) error {
	raw, err := protocol.Encode(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.Action, err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return fmt.Errorf("write %s: %w", m.Action, err)
	}
	return nil
}

// ReadLoop delivers inbound frames to the handler until the connection
// drops, the context is canceled, or the handler refuses a frame. It
// blocks; run it on its own goroutine.
func (c *Channel) ReadLoop(ctx context.Context, handle FrameHandler) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("relay closed connection")
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if !handle(raw) {
			c.logger.Info("frame handler stopped, closing connection")
			return nil
		}
	}
}

// Close sends a close frame and tears down the connection. Idempotent.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
