package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomchat/internal/app/chat"
	"roomchat/internal/configs"
	"roomchat/internal/handler"
	"roomchat/internal/pkg/randx"
)

func newTestServer(t *testing.T) (*httptest.Server, *handler.AppDeps) {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:   "development",
		Port:          8080,
		QueueCapacity: 64,
	}

	clock := chat.NewClock()
	directory := chat.NewDirectory()
	registry := chat.NewRegistry(directory, clock, cfg.QueueCapacity)

	deps := &handler.AppDeps{
		Config:    cfg,
		Registry:  registry,
		Directory: directory,
		Router:    chat.NewRouter(directory, clock),
		Sessions:  chat.NewSessions(registry, directory, clock),
	}

	srv := httptest.NewServer(handler.Router(deps))
	t.Cleanup(srv.Close)
	t.Cleanup(deps.Sessions.Shutdown)

	return srv, deps
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Code int `json:"code"`
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "ok", body.Data.Status)
}

func TestMintRoomCode(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Post(srv.URL+"/api/rooms", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Code int `json:"code"`
		Data struct {
			RoomCode string `json:"roomCode"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 0, body.Code)
	assert.True(t, randx.IsValidRoomCode(body.Data.RoomCode))
}

func TestRoomStatusUnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t)

	res, err := http.Get(srv.URL + "/api/rooms/Ab12Cd")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// wsClient wraps one websocket connection for frame-level assertions.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialWS(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(msgType chat.MessageType, payload any) {
	c.t.Helper()

	payloadBytes, err := json.Marshal(payload)
	require.NoError(c.t, err)

	frame, err := json.Marshal(chat.Envelope{Type: msgType, Payload: payloadBytes})
	require.NoError(c.t, err)

	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, frame))
}

// expect reads frames until one satisfies pred, failing on timeout.
func (c *wsClient) expect(pred func(chat.Envelope) bool) chat.Envelope {
	c.t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))

		_, frameBytes, err := c.conn.ReadMessage()
		require.NoError(c.t, err, "timed out waiting for expected frame")

		var env chat.Envelope
		require.NoError(c.t, json.Unmarshal(frameBytes, &env))

		if pred(env) {
			return env
		}
	}
}

func (c *wsClient) expectStatus(text string) {
	c.t.Helper()

	c.expect(func(env chat.Envelope) bool {
		if env.Type != chat.TypeStatus {
			return false
		}
		var payload chat.StatusPayload
		return json.Unmarshal(env.Payload, &payload) == nil && payload.Text == text
	})
}

func (c *wsClient) expectChat(body string) chat.ChatPayload {
	c.t.Helper()

	var got chat.ChatPayload
	c.expect(func(env chat.Envelope) bool {
		if env.Type != chat.TypeMessage {
			return false
		}
		return json.Unmarshal(env.Payload, &got) == nil && got.Body == body
	})
	return got
}

func TestWebSocketChatFlow(t *testing.T) {
	srv, deps := newTestServer(t)

	alice := dialWS(t, srv)
	alice.send(chat.TypeJoin, chat.JoinPayload{RoomID: "room1", DisplayName: "alice"})
	alice.expectStatus("joined room room1")
	alice.expectStatus("alice joined the room")

	bob := dialWS(t, srv)
	bob.send(chat.TypeJoin, chat.JoinPayload{RoomID: "room1", DisplayName: "bob"})
	bob.expectStatus("joined room room1")
	alice.expectStatus("bob joined the room")

	alice.send(chat.TypeMessage, chat.SendPayload{RoomID: "room1", Body: "hi"})

	gotA := alice.expectChat("hi")
	gotB := bob.expectChat("hi")
	assert.Equal(t, "alice", gotA.DisplayName)
	assert.Equal(t, gotA.SenderID, gotB.SenderID)

	// A message claiming the wrong room is rejected, and nobody receives it.
	bob.send(chat.TypeMessage, chat.SendPayload{RoomID: "other", Body: "spoofed"})
	bob.expect(func(env chat.Envelope) bool {
		if env.Type != chat.TypeError {
			return false
		}
		var payload chat.ErrorPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		return payload.Reason == "RoomMismatch"
	})

	// The rejected sender stays joined and can still chat.
	bob.send(chat.TypeMessage, chat.SendPayload{RoomID: "room1", Body: "still here"})
	alice.expectChat("still here")

	// Explicit leave notifies the remaining member and shrinks the room.
	bob.send(chat.TypeLeave, struct{}{})
	alice.expectStatus("bob left the room")

	require.Eventually(t, func() bool {
		return len(deps.Directory.Members("room1")) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWebSocketJoinValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	client := dialWS(t, srv)
	client.send(chat.TypeJoin, chat.JoinPayload{RoomID: "room1", DisplayName: "   "})

	client.expect(func(env chat.Envelope) bool {
		if env.Type != chat.TypeError {
			return false
		}
		var payload chat.ErrorPayload
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		return payload.Reason == "InvalidName"
	})

	// The connection stays usable for a retry.
	client.send(chat.TypeJoin, chat.JoinPayload{RoomID: "room1", DisplayName: "carol"})
	client.expectStatus("joined room room1")
}
