package systembundle

import (
	"net/http"

	"github.com/bkabbarah/coachkit/app/core"
)

// SystemBundle handle coach accounts and the live feed
type SystemBundle struct {
	routes []core.Route
}

// NewSystemBundle instance
func NewSystemBundle(base core.Controller, opts ControllerOptions) core.Bundle {
	hc := NewSystemController(base, opts)

	r := []core.Route{
		{Method: http.MethodPost, Path: "/system/register", Handler: hc.RegisterHandler, Public: true},
		{Method: http.MethodPost, Path: "/system/login", Handler: hc.LoginHandler, Public: true},
		{Method: http.MethodPost, Path: "/system/logout", Handler: hc.LogoutHandler},
		{Method: http.MethodGet, Path: "/system/me", Handler: hc.MeHandler},

		// ticket before {ticket}, mux matches in order
		{Method: http.MethodGet, Path: "/ws/ticket", Handler: hc.GetWSTicketHandler},
		{Method: http.MethodGet, Path: "/ws/{ticket}", Handler: hc.HandleConnections, Public: true},

		{Method: http.MethodOptions, Path: "/system/{rest:.*}", Handler: hc.OptionsHandler, Public: true},
		{Method: http.MethodOptions, Path: "/ws/{rest:.*}", Handler: hc.OptionsHandler, Public: true},
	}

	return &SystemBundle{
		routes: r,
	}
}

// GetRoutes implement interface core.Bundle
func (b *SystemBundle) GetRoutes() []core.Route {
	return b.routes
}
