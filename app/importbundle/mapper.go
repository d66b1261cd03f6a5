package importbundle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bkabbarah/coachkit/app/textgen"
)

// Field is a client attribute a spreadsheet column can feed.
type Field string

const (
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldGoalWeight Field = "goal_weight"
	FieldNotes      Field = "notes"
	FieldWeight     Field = "weight"
)

// FieldDefinition describes a target field for the mapper.
type FieldDefinition struct {
	Field       Field
	Required    bool
	Description string
}

var FieldCatalog = []FieldDefinition{
	{FieldName, true, "client's full name"},
	{FieldEmail, false, "client's email address"},
	{FieldGoalWeight, false, "target weight in lbs"},
	{FieldNotes, false, "any notes about the client"},
	{FieldWeight, false, "current or most recent weight in lbs"},
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SampleRows is how many rows the mapper gets to see.
const SampleRows = 3

// FieldMapping assigns a source column to each field. nil means unmapped.
// swagger:model
type FieldMapping struct {
	Name            *string    `json:"name"`
	Email           *string    `json:"email"`
	GoalWeight      *string    `json:"goal_weight"`
	Notes           *string    `json:"notes"`
	Weight          *string    `json:"weight"`
	Confidence      Confidence `json:"confidence"`
	UnmappedColumns []string   `json:"unmapped_columns"`
}

// Column returns the column mapped to f, or "".
func (m FieldMapping) Column(f Field) string {
	var col *string
	switch f {
	case FieldName:
		col = m.Name
	case FieldEmail:
		col = m.Email
	case FieldGoalWeight:
		col = m.GoalWeight
	case FieldNotes:
		col = m.Notes
	case FieldWeight:
		col = m.Weight
	}
	if col == nil {
		return ""
	}
	return *col
}

// Set maps f to column; an empty column clears the field.
func (m *FieldMapping) Set(f Field, column string) {
	var col *string
	if column != "" {
		col = &column
	}
	switch f {
	case FieldName:
		m.Name = col
	case FieldEmail:
		m.Email = col
	case FieldGoalWeight:
		m.GoalWeight = col
	case FieldNotes:
		m.Notes = col
	case FieldWeight:
		m.Weight = col
	}
}

// normalize turns "" and "null" placeholders into unmapped fields and
// fills a missing confidence.
func (m *FieldMapping) normalize() {
	for _, def := range FieldCatalog {
		col := strings.TrimSpace(m.Column(def.Field))
		if strings.EqualFold(col, "null") {
			col = ""
		}
		m.Set(def.Field, col)
	}
	switch Confidence(strings.ToLower(string(m.Confidence))) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		m.Confidence = Confidence(strings.ToLower(string(m.Confidence)))
	default:
		m.Confidence = ConfidenceLow
	}
	if m.UnmappedColumns == nil {
		m.UnmappedColumns = []string{}
	}
}

// Mapper infers a FieldMapping for a table.
type Mapper interface {
	MapColumns(ctx context.Context, t *Table) (FieldMapping, error)
}

// ColumnMapper asks a text generation model for the mapping.
type ColumnMapper struct {
	gen       textgen.Generator
	maxTokens int
}

func NewColumnMapper(gen textgen.Generator, maxTokens int) *ColumnMapper {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &ColumnMapper{gen: gen, maxTokens: maxTokens}
}

func (m *ColumnMapper) MapColumns(ctx context.Context, t *Table) (FieldMapping, error) {
	text, err := m.gen.Generate(ctx, textgen.Request{
		Purpose:   textgen.PurposeColumnMapping,
		Prompt:    MappingPrompt(t),
		MaxTokens: m.maxTokens,
	})
	if err != nil {
		return FieldMapping{}, fmt.Errorf("%w: %w", ErrMappingUnavailable, err)
	}
	return ParseMappingResponse(text)
}

// ParseMappingResponse decodes the model answer, first as a whole and then
// from the first JSON object embedded in it. Anything but an object is
// ErrMappingParse.
func ParseMappingResponse(text string) (FieldMapping, error) {
	var mapping FieldMapping
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), &mapping); err == nil {
			mapping.normalize()
			return mapping, nil
		}
	}

	object, ok := textgen.ExtractJSONObject(text)
	if !ok {
		return FieldMapping{}, ErrMappingParse
	}
	mapping = FieldMapping{}
	if err := json.Unmarshal([]byte(object), &mapping); err != nil {
		return FieldMapping{}, fmt.Errorf("%w: %v", ErrMappingParse, err)
	}
	mapping.normalize()
	return mapping, nil
}

// MappingPrompt lists the columns, the first rows and the field catalog.
func MappingPrompt(t *Table) string {
	columns, _ := json.Marshal(t.Columns)

	var fields strings.Builder
	for _, def := range FieldCatalog {
		req := "optional"
		if def.Required {
			req = "required"
		}
		fmt.Fprintf(&fields, "- %s (%s): %s\n", def.Field, req, def.Description)
	}

	return fmt.Sprintf(`You are analyzing a spreadsheet that a fitness coach uses to track clients.
Map the spreadsheet columns to the fields of our system.

Our system has these fields:
%s
The spreadsheet has these columns:
%s

Here are the first rows of data:
%s

Use the column names and the sample values to decide which spreadsheet column feeds which field.

Respond with ONLY a JSON object in exactly this format, no other text:
{
    "name": "column_name_or_null",
    "email": "column_name_or_null",
    "goal_weight": "column_name_or_null",
    "notes": "column_name_or_null",
    "weight": "column_name_or_null",
    "confidence": "high/medium/low",
    "unmapped_columns": ["col1", "col2"]
}

Use null for a field without a matching column.
For name, when first and last name are separate columns, prefer a full name column, then the first name column, over a last name only column.`,
		fields.String(), columns, t.Sample(SampleRows))
}
