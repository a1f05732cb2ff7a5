/*
Package handler provides the HTTP handler for WebSocket connection upgrading
and session wiring.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/limiter"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/resp"
	"roomchat/internal/transport/ws"
)

// HandleWebSocket creates an HTTP HandlerFunc that upgrades the connection
// and runs the session: a registered connection starts in Connecting and the
// client drives joins and messages entirely over frames.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		conn := ws.NewConn(wsConn, *logx.Logger())
		client := ws.NewClient(conn, deps.Sessions, deps.Router)

		logx.Info("WebSocket connection established", "conn_id", client.Session().ID)

		go conn.RunPinger()

		client.ReadPump()
	}
}
