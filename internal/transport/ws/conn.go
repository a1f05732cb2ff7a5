/*
Package ws adapts gorilla/websocket connections to the chat core's Sink
interface and runs the per-connection read loop.

This file defines the Conn wrapper: deadline-guarded writes serialized by a
mutex (the delivery worker and the ping loop are the only writers) and
idempotent close.
*/
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// timeout for writing a frame to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192
)

// Conn wraps a gorilla websocket connection as a chat.Sink.
type Conn struct {
	mu        sync.Mutex
	ws        *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
	logger    zerolog.Logger
}

// NewConn wraps an upgraded websocket connection.
func NewConn(wsConn *websocket.Conn, logger zerolog.Logger) *Conn {
	return &Conn{
		ws:     wsConn,
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Write sends one text frame with a write deadline. Implements chat.Sink.
func (c *Conn) Write(p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.ws.WriteMessage(websocket.TextMessage, p)
}

// Close shuts the underlying connection down. Safe to call more than once;
// the read loop unblocks with an error once the connection closes.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// RunPinger sends periodic Ping frames to maintain the heartbeat. It returns
// when the connection closes or a ping write fails. Run on its own goroutine.
func (c *Conn) RunPinger() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return

		case <-ticker.C:
			if err := c.writePing(); err != nil {
				c.logger.Debug().Err(err).Msg("Ping write failed, stopping pinger")
				return
			}
		}
	}
}

func (c *Conn) writePing() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
