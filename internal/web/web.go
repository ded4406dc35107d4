// Package web serves the LAN status and override API. There is no user
// login: the API is bound to the house network, like the MQTT broker.
package web

import (
	"github.com/gin-gonic/gin"

	"home-monitor/internal/web/api"
)

type WebServer struct {
	router *gin.Engine
}

// NewWebServer wires the API routes. deps carries the live machines and
// queue; see api.Dependencies.
func NewWebServer(deps api.Dependencies) *WebServer {
	router := gin.Default()

	api.RegisterStatusRoutes(router, deps)
	api.RegisterOverrideRoutes(router, deps)

	return &WebServer{router: router}
}

func (ws *WebServer) Start(addr string) error {
	return ws.router.Run(addr)
}
