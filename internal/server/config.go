package server

import (
	"privyscope/internal/app"
	"privyscope/internal/interfaces"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AppConfig configures the underlying application; nil selects defaults.
	AppConfig *app.Config

	Logger interfaces.Logger
}
