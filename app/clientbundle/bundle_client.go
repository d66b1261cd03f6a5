package clientbundle

import (
	"net/http"

	"github.com/bkabbarah/coachkit/app/core"
)

// ClientBundle handle client and check-in resources
type ClientBundle struct {
	routes []core.Route
}

// NewClientBundle instance
func NewClientBundle(base core.Controller, opts ControllerOptions) core.Bundle {
	hc := NewClientController(base, opts)

	r := []core.Route{
		{Method: http.MethodGet, Path: "/clients", Handler: hc.GetClientsHandler},
		{Method: http.MethodPost, Path: "/clients", Handler: hc.CreateClientHandler},
		{Method: http.MethodGet, Path: "/clients/{clientId:[0-9]+}", Handler: hc.GetClientHandler},
		{Method: http.MethodPut, Path: "/clients/{clientId:[0-9]+}", Handler: hc.UpdateClientHandler},
		{Method: http.MethodDelete, Path: "/clients/{clientId:[0-9]+}", Handler: hc.DeleteClientHandler},
		{Method: http.MethodPut, Path: "/clients/{clientId:[0-9]+}/goal", Handler: hc.SetGoalHandler},

		{Method: http.MethodGet, Path: "/clients/{clientId:[0-9]+}/checkins", Handler: hc.GetCheckInsHandler},
		{Method: http.MethodPost, Path: "/clients/{clientId:[0-9]+}/checkins", Handler: hc.AddCheckInHandler},
		{Method: http.MethodGet, Path: "/clients/{clientId:[0-9]+}/checkins/{checkInId:[0-9]+}/photo", Handler: hc.GetCheckInPhotoHandler},

		{Method: http.MethodPost, Path: "/clients/{clientId:[0-9]+}/reengagement", Handler: hc.GenerateReengagementHandler},
		{Method: http.MethodPost, Path: "/clients/{clientId:[0-9]+}/reengagement/send", Handler: hc.SendReengagementHandler},
		{Method: http.MethodGet, Path: "/clients/{clientId:[0-9]+}/report.pdf", Handler: hc.GetReportHandler},

		{Method: http.MethodOptions, Path: "/clients", Handler: hc.OptionsHandler, Public: true},
		{Method: http.MethodOptions, Path: "/clients/{rest:.*}", Handler: hc.OptionsHandler, Public: true},
	}

	return &ClientBundle{
		routes: r,
	}
}

// GetRoutes implement interface core.Bundle
func (b *ClientBundle) GetRoutes() []core.Route {
	return b.routes
}
