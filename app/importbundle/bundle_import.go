package importbundle

import (
	"net/http"

	"github.com/bkabbarah/coachkit/app/core"
)

// ImportBundle handle spreadsheet import resources
type ImportBundle struct {
	routes []core.Route
}

// NewImportBundle instance
func NewImportBundle(base core.Controller, service *ImportService, maxUploadBytes int64) core.Bundle {
	ic := NewImportController(base, service, maxUploadBytes)

	r := []core.Route{
		{Method: http.MethodPost, Path: "/import/analyze", Handler: ic.AnalyzeHandler},
		{Method: http.MethodPost, Path: "/import/{ticket}/preview", Handler: ic.PreviewHandler},
		{Method: http.MethodPost, Path: "/import/{ticket}/confirm", Handler: ic.ConfirmHandler},
		{Method: http.MethodDelete, Path: "/import/{ticket}", Handler: ic.CancelHandler},

		{Method: http.MethodOptions, Path: "/import/{rest:.*}", Handler: ic.OptionsHandler, Public: true},
	}

	return &ImportBundle{
		routes: r,
	}
}

// GetRoutes implement interface core.Bundle
func (b *ImportBundle) GetRoutes() []core.Route {
	return b.routes
}
