package importbundle

import "errors"

var (
	ErrUnsupportedFormat  = errors.New("unsupported file format, use CSV or Excel")
	ErrEmptyTable         = errors.New("spreadsheet has no header row")
	ErrUnreadableFile     = errors.New("spreadsheet could not be read")
	ErrMappingUnavailable = errors.New("column mapping service unavailable")
	ErrMappingParse       = errors.New("could not parse column mapping from AI response")
	ErrSessionNotFound    = errors.New("import session not found or expired")
	ErrNoFile             = errors.New("no spreadsheet uploaded")
)
