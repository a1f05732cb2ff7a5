package handler

import (
	"roomchat/internal/app/chat"
	"roomchat/internal/configs"
)

// AppDeps carries every server-scoped dependency handlers need. Constructed
// once in main and passed by reference; nothing here is ambient global state.
type AppDeps struct {
	Config    *configs.AppConfig
	Registry  *chat.Registry
	Directory *chat.Directory
	Router    *chat.Router
	Sessions  *chat.Sessions
}
