package importbundle

import (
	"errors"
	"net/http"

	"github.com/bkabbarah/coachkit/app/core"
	"github.com/gorilla/mux"
)

const uploadFormField = "file"

// ImportController serves the spreadsheet import routes.
type ImportController struct {
	core.Controller
	service        *ImportService
	maxUploadBytes int64
}

func NewImportController(base core.Controller, service *ImportService, maxUploadBytes int64) *ImportController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &ImportController{
		Controller:     base,
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// ConfirmRequest optionally replaces the mapping proposed by analyze.
type ConfirmRequest struct {
	Mapping *FieldMapping `json:"mapping"`
}

// analyzeImport swagger:route POST /import/analyze import analyzeImport
//
// uploads a spreadsheet and proposes a column mapping
//
// consumes:
// - multipart/form-data
// produces:
// - application/json
// Responses:
//
//	200: Analysis
//	400: HandleErrorData "unsupported or unreadable file"
//	502: HandleErrorData "mapping failed"
func (c *ImportController) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes)
	if err := r.ParseMultipartForm(c.maxUploadBytes); err != nil {
		c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		c.HandleErrorWithStatus(ErrNoFile, w, http.StatusBadRequest)
		return
	}
	defer file.Close()

	analysis, err := c.service.Analyze(r.Context(), coach.ID, Upload{Filename: header.Filename, Content: file})
	if c.handleImportError(err, w) {
		return
	}
	c.SendJSON(w, analysis, http.StatusOK)
}

func (c *ImportController) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	mapping := FieldMapping{}
	if err := c.GetContent(&mapping, r); err != nil {
		c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
		return
	}

	records, err := c.service.Preview(mux.Vars(r)["ticket"], coach.ID, mapping)
	if c.handleImportError(err, w) {
		return
	}
	c.SendJSON(w, records, http.StatusOK)
}

// confirmImport swagger:route POST /import/{ticket}/confirm import confirmImport
//
// imports every usable row and closes the import session
//
// Responses:
//
//	200: ImportResult
//	404: HandleErrorData "import session not found or expired"
func (c *ImportController) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	req := ConfirmRequest{}
	if r.ContentLength > 0 {
		if err := c.GetContent(&req, r); err != nil {
			c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
			return
		}
	}

	result, err := c.service.Confirm(r.Context(), mux.Vars(r)["ticket"], coach.ID, req.Mapping)
	if c.handleImportError(err, w) {
		return
	}
	c.SendJSON(w, result, http.StatusOK)
}

func (c *ImportController) CancelHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	err := c.service.Cancel(mux.Vars(r)["ticket"], coach.ID)
	if c.handleImportError(err, w) {
		return
	}
	c.SendJSON(w, map[string]bool{"cancelled": true}, http.StatusOK)
}

func (c *ImportController) handleImportError(err error, w http.ResponseWriter) bool {
	if err == nil {
		return false
	}
	return c.HandleErrorWithStatus(err, w, statusForError(err))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrEmptyTable),
		errors.Is(err, ErrUnreadableFile),
		errors.Is(err, ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMappingUnavailable), errors.Is(err, ErrMappingParse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
