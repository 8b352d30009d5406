package handler

import (
	"presencehub/internal/app/hub"
	"presencehub/internal/configs"
)

// AppDeps bundles the collaborators the HTTP layer needs.
type AppDeps struct {
	Hub    *hub.Hub
	Config *configs.AppConfig
}
