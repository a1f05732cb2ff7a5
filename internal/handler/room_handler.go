/*
Package handler provides HTTP handler functions for minting room codes and
checking room occupancy. Rooms themselves materialize lazily on the first
join over the WebSocket, so minting only reserves nothing — it hands out a
well-formed code clients can share.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/randx"
	"roomchat/internal/pkg/resp"
)

// HandleMintRoomCode generates a fresh Base62 room code.
func HandleMintRoomCode(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomCode, err := randx.RoomCode()
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"roomCode": roomCode,
		})
	}
}

// HandleRoomStatus reports whether a room currently exists and how many
// members it has. A room exists exactly while its membership is non-empty.
func HandleRoomStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if !randx.IsValidRoomCode(code) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidRoom))
			return
		}

		members := deps.Directory.Members(code)
		if len(members) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"roomCode": code,
			"members":  len(members),
		})
	}
}
