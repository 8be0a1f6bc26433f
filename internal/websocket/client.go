package websocket

import (
	"context"
	"errors"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second

	// Tabs never send data frames, so only control frames need to fit.
	readLimit = 512
)

// Client is one open tab or device following the shared list. It only
// listens: edits go through the HTTP API and come back as change messages.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn) *Client {
	conn.SetReadLimit(readLimit)
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// Run follows the list until the tab goes away or ctx ends. The client is
// registered with the hub for exactly that long.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)
	defer c.conn.CloseNow()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		c.writePump(ctx)
		// unblock the read side when writing stopped first
		cancel()
	}()
	c.readPump(ctx)
}

// readPump waits for the tab to close. Any data frame is rejected with a
// policy violation since list changes are never accepted over the socket.
func (c *Client) readPump(ctx context.Context) {
	typ, _, err := c.conn.Read(ctx)
	if err != nil {
		switch ws.CloseStatus(err) {
		case ws.StatusNormalClosure, ws.StatusGoingAway:
		default:
			if !errors.Is(err, context.Canceled) {
				c.hub.logger.Debug("tab disconnected", "error", err)
			}
		}
		return
	}
	c.hub.logger.Warn("tab sent data on a listen-only socket", "type", typ)
	c.conn.Close(ws.StatusPolicyViolation, "list changes go through the HTTP API")
}

// writePump forwards change messages to the tab and pings it so dead
// devices are noticed.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// unregistered
				return
			}
			if err := c.write(ctx, msg); err != nil {
				c.hub.logger.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.hub.logger.Debug("ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
