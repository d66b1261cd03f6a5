package importbundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bkabbarah/coachkit/app/core"
	"github.com/charmbracelet/log"
)

const (
	EventImport  = "IMPORT"
	ActionImport = "ADD"
)

// RecordStore persists a confirmed import in one batch.
type RecordStore interface {
	SaveImport(coachId uint, records []ImportRecord) (ImportResult, error)
}

// Publisher pushes an event to the coach's live connections.
type Publisher interface {
	Publish(coachId uint, messageType, action string, data interface{})
}

// ImportResult summarizes a confirmed import.
// swagger:model
type ImportResult struct {
	ClientsCreated  int `json:"clients_created"`
	CheckInsCreated int `json:"check_ins_created"`
	RowsSkipped     int `json:"rows_skipped"`
}

// Upload is a spreadsheet received from a coach.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Analysis is what a coach reviews before confirming.
// swagger:model
type Analysis struct {
	Ticket    string         `json:"ticket"`
	Filename  string         `json:"filename"`
	Columns   []string       `json:"columns"`
	Mapping   FieldMapping   `json:"mapping"`
	Preview   []ImportRecord `json:"preview"`
	RowCount  int            `json:"row_count"`
	ExpiresAt time.Time      `json:"expires_at"`
}

type ServiceOptions struct {
	Mapper    Mapper
	Store     RecordStore
	Sessions  *SessionStore
	TmpRoot   string
	Logger    *log.Logger
	Metrics   *core.Metrics
	Publisher Publisher
}

// ImportService runs analyze, preview, confirm and cancel.
type ImportService struct {
	mapper    Mapper
	store     RecordStore
	sessions  *SessionStore
	tmpRoot   string
	logger    *log.Logger
	metrics   *core.Metrics
	publisher Publisher
}

func NewImportService(opts ServiceOptions) *ImportService {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.TmpRoot == "" {
		opts.TmpRoot = os.TempDir()
	}
	return &ImportService{
		mapper:    opts.Mapper,
		store:     opts.Store,
		sessions:  opts.Sessions,
		tmpRoot:   opts.TmpRoot,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
	}
}

// Analyze stores the upload, maps its columns and opens a session.
// Nothing is left on disk when it fails.
func (s *ImportService) Analyze(ctx context.Context, coachId uint, upload Upload) (*Analysis, error) {
	analysis, err := s.analyze(ctx, coachId, upload)
	s.countAnalyzed(err)
	return analysis, err
}

func (s *ImportService) analyze(ctx context.Context, coachId uint, upload Upload) (*Analysis, error) {
	if upload.Content == nil {
		return nil, ErrNoFile
	}
	format, err := FormatFromPath(upload.Filename)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.tmpRoot, 0o700); err != nil {
		return nil, fmt.Errorf("create import directory: %w", err)
	}
	dir, err := os.MkdirTemp(s.tmpRoot, "import-")
	if err != nil {
		return nil, fmt.Errorf("create import directory: %w", err)
	}
	session := &Session{
		CoachId:  coachId,
		Dir:      dir,
		FilePath: filepath.Join(dir, "upload."+string(format)),
		Filename: filepath.Base(upload.Filename),
	}

	analysis, err := s.prepare(ctx, session, upload.Content)
	if err != nil {
		s.sessions.Close(session)
		return nil, err
	}
	return analysis, nil
}

func (s *ImportService) prepare(ctx context.Context, session *Session, content io.Reader) (*Analysis, error) {
	if err := writeUpload(session.FilePath, content); err != nil {
		return nil, err
	}
	table, err := ReadTable(session.FilePath)
	if err != nil {
		return nil, err
	}
	mapping, err := s.mapper.MapColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	mapping = reconcileMapping(mapping, table.Columns)

	session.Mapping = mapping
	session.Columns = table.Columns
	session.RowCount = len(table.Rows)
	ticket := s.sessions.Open(session)

	s.logger.Info("spreadsheet analyzed", "coach", session.CoachId, "ticket", ticket,
		"rows", session.RowCount, "columns", len(session.Columns), "confidence", mapping.Confidence)

	return &Analysis{
		Ticket:    ticket,
		Filename:  session.Filename,
		Columns:   table.Columns,
		Mapping:   mapping,
		Preview:   PreviewRecords(table, mapping),
		RowCount:  len(table.Rows),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func writeUpload(path string, content io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		return fmt.Errorf("store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

// Preview re-runs the import rules for an edited mapping. The mapping is
// kept for the session's confirm.
func (s *ImportService) Preview(ticket string, coachId uint, mapping FieldMapping) ([]ImportRecord, error) {
	session, err := s.sessions.Get(ticket, coachId)
	if err != nil {
		return nil, err
	}
	table, err := ReadTable(session.FilePath)
	if err != nil {
		// confirmed or cancelled since Get
		if _, statErr := os.Stat(session.FilePath); errors.Is(statErr, fs.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	mapping = reconcileMapping(mapping, table.Columns)
	if err := s.sessions.UpdateMapping(ticket, coachId, mapping); err != nil {
		return nil, err
	}
	return PreviewRecords(table, mapping), nil
}

// Confirm imports every usable row with the session's mapping, or with
// override when given. The session and its file are gone afterwards,
// whatever the outcome.
func (s *ImportService) Confirm(ctx context.Context, ticket string, coachId uint, override *FieldMapping) (ImportResult, error) {
	result, err := s.confirm(ctx, ticket, coachId, override)
	s.countConfirmed(err)
	return result, err
}

func (s *ImportService) confirm(ctx context.Context, ticket string, coachId uint, override *FieldMapping) (ImportResult, error) {
	session, err := s.sessions.Take(ticket, coachId)
	if err != nil {
		return ImportResult{}, err
	}
	defer s.sessions.Close(session)

	table, err := ReadTable(session.FilePath)
	if err != nil {
		return ImportResult{}, err
	}
	mapping := session.Mapping
	if override != nil {
		mapping = reconcileMapping(*override, table.Columns)
	}
	records := CoerceRecords(table, mapping)

	if err := ctx.Err(); err != nil {
		return ImportResult{}, err
	}
	result, err := s.store.SaveImport(coachId, records)
	if err != nil {
		return ImportResult{}, fmt.Errorf("save import: %w", err)
	}
	result.RowsSkipped = len(table.Rows) - len(records)

	s.logger.Info("import confirmed", "coach", coachId, "ticket", ticket,
		"clients", result.ClientsCreated, "check_ins", result.CheckInsCreated, "skipped", result.RowsSkipped)
	if s.metrics != nil {
		s.metrics.ImportedClients.Add(float64(result.ClientsCreated))
		s.metrics.SkippedRows.Add(float64(result.RowsSkipped))
	}
	if s.publisher != nil {
		s.publisher.Publish(coachId, EventImport, ActionImport, result)
	}
	return result, nil
}

// Cancel drops the session and its file.
func (s *ImportService) Cancel(ticket string, coachId uint) error {
	session, err := s.sessions.Take(ticket, coachId)
	if err != nil {
		return err
	}
	s.sessions.Close(session)
	return nil
}

// reconcileMapping cleans a mapping from the mapper or a client: fields
// pointing at columns the table does not have are cleared, and the unmapped
// list is recomputed from the table.
func reconcileMapping(mapping FieldMapping, columns []string) FieldMapping {
	mapping.normalize()
	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col] = true
	}
	used := make(map[string]bool)
	for _, def := range FieldCatalog {
		col := mapping.Column(def.Field)
		if col == "" {
			continue
		}
		if !known[col] {
			mapping.Set(def.Field, "")
			continue
		}
		used[col] = true
	}
	mapping.UnmappedColumns = []string{}
	for _, col := range columns {
		if !used[col] {
			mapping.UnmappedColumns = append(mapping.UnmappedColumns, col)
		}
	}
	return mapping
}

func (s *ImportService) countAnalyzed(err error) {
	if s.metrics != nil {
		s.metrics.ImportsAnalyzed.WithLabelValues(outcome(err)).Inc()
	}
	if err != nil {
		s.logger.Warn("spreadsheet analysis failed", "err", err)
	}
}

func (s *ImportService) countConfirmed(err error) {
	if s.metrics != nil {
		s.metrics.ImportsConfirmed.WithLabelValues(outcome(err)).Inc()
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrEmptyTable), errors.Is(err, ErrUnreadableFile), errors.Is(err, ErrNoFile):
		return "rejected"
	case errors.Is(err, ErrMappingUnavailable), errors.Is(err, ErrMappingParse):
		return "mapping_failed"
	case errors.Is(err, ErrSessionNotFound):
		return "not_found"
	}
	return "error"
}
