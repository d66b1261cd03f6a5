package importbundle

import (
	"math"
	"strconv"
	"strings"
)

// ImportRecord is one client candidate read from a spreadsheet row.
// swagger:model
type ImportRecord struct {
	Name       string   `json:"name"`
	Email      *string  `json:"email"`
	GoalWeight *float64 `json:"goal_weight"`
	Notes      *string  `json:"notes"`
	Weight     *float64 `json:"weight"`
}

// CoerceRecords turns every row with a usable name into an ImportRecord.
// Rows without one are dropped; a bad number only empties its own field.
func CoerceRecords(t *Table, mapping FieldMapping) []ImportRecord {
	records := make([]ImportRecord, 0, len(t.Rows))
	for i := range t.Rows {
		if rec, ok := coerceRow(t, i, mapping); ok {
			records = append(records, rec)
		}
	}
	return records
}

func coerceRow(t *Table, i int, mapping FieldMapping) (ImportRecord, bool) {
	name, ok := textField(t, i, mapping.Column(FieldName))
	if !ok {
		return ImportRecord{}, false
	}
	switch strings.ToLower(name) {
	case "nan", "none", "":
		return ImportRecord{}, false
	}

	rec := ImportRecord{Name: name}
	if v, ok := textField(t, i, mapping.Column(FieldEmail)); ok && v != "" {
		rec.Email = &v
	}
	if v, ok := textField(t, i, mapping.Column(FieldNotes)); ok && v != "" {
		rec.Notes = &v
	}
	rec.GoalWeight = numberField(t, i, mapping.Column(FieldGoalWeight))
	rec.Weight = numberField(t, i, mapping.Column(FieldWeight))
	return rec, true
}

// textField returns the trimmed text of a non-null cell.
func textField(t *Table, i int, column string) (string, bool) {
	if column == "" {
		return "", false
	}
	cell, ok := t.Cell(i, column)
	if !ok || cell.IsNull() {
		return "", false
	}
	return strings.TrimSpace(cell.Text), true
}

// numberField parses a non-null cell as a finite number.
func numberField(t *Table, i int, column string) *float64 {
	if column == "" {
		return nil
	}
	cell, ok := t.Cell(i, column)
	if !ok || cell.IsNull() {
		return nil
	}
	if cell.Number != nil {
		v := *cell.Number
		return &v
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell.Text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
