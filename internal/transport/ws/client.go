/*
This file defines the Client read loop: it parses inbound frames and
dispatches them to the session controller and message router. All outbound
traffic flows through the connection's delivery worker, never from here.
*/
package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"roomchat/internal/app/chat"
)

// Client binds one websocket connection to its registered chat session.
type Client struct {
	conn     *Conn
	session  *chat.Connection
	sessions *chat.Sessions
	router   *chat.Router
	logger   zerolog.Logger
}

// NewClient wires an upgraded connection into the chat core. The session is
// registered immediately; the caller starts ReadPump and the pinger.
func NewClient(conn *Conn, sessions *chat.Sessions, router *chat.Router) *Client {
	session := sessions.Connect(conn)

	return &Client{
		conn:     conn,
		session:  session,
		sessions: sessions,
		router:   router,
		logger:   conn.logger.With().Str("conn_id", session.ID).Logger(),
	}
}

// Session exposes the registered connection, mainly for tests and logging.
func (c *Client) Session() *chat.Connection {
	return c.session
}

// ReadPump reads frames from the websocket until the connection drops, then
// runs the disconnect path. It blocks and is intended to run on the handler
// goroutine, with the pinger and delivery worker on their own.
func (c *Client) ReadPump() {
	defer c.sessions.Disconnect(c.session)

	c.conn.ws.SetReadLimit(maxMessageSize)

	if err := c.conn.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.ws.SetPongHandler(func(string) error {
		return c.conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Read loop ended (client close/going away)")
			}
			return
		}

		c.processInbound(frameBytes)
	}
}

// processInbound handles one raw frame received from the client.
func (c *Client) processInbound(frameBytes []byte) {
	var envelope chat.Envelope
	if err := json.Unmarshal(frameBytes, &envelope); err != nil {
		c.logger.Warn().Err(err).Bytes("frame_bytes", frameBytes).Msg("Client sent invalid JSON")
		return
	}

	switch envelope.Type {
	case chat.TypeJoin:
		c.handleJoin(envelope.Payload)

	case chat.TypeMessage:
		c.handleMessage(envelope.Payload)

	case chat.TypeLeave:
		c.sessions.Leave(c.session)

	default:
		c.logger.Warn().Str("frame_type", string(envelope.Type)).Msg("Client sent unsupported frame type")
	}
}

func (c *Client) handleJoin(payloadBytes json.RawMessage) {
	var payload chat.JoinPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid join payload")
		return
	}

	if customErr := c.sessions.Join(c.session, payload.RoomID, payload.DisplayName); customErr != nil {
		c.sessions.SendError(c.session, customErr)
	}
}

func (c *Client) handleMessage(payloadBytes json.RawMessage) {
	var payload chat.SendPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid message payload")
		return
	}

	if customErr := c.router.Route(c.session, payload.RoomID, payload.Body); customErr != nil {
		c.sessions.SendError(c.session, customErr)
	}
}
