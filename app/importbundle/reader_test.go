package importbundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		format Format
		ok     bool
	}{
		{"clients.csv", FormatCSV, true},
		{"CLIENTS.CSV", FormatCSV, true},
		{"roster.xlsx", FormatXLSX, true},
		{"old/roster.XLS", FormatXLS, true},
		{"notes.txt", "", false},
		{"csv", "", false},
		{"archive.csv.zip", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, err := FormatFromPath(tt.path)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
		})
	}
}

func TestReadTableRejectsUnsupportedFormatBeforeReading(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadCSV(t *testing.T) {
	data := "\xEF\xBB\xBFFull Name,Email,Email,,Wt\n" +
		"Alice,alice@example.com,a2@example.com,x,150\n" +
		",,,,\n" +
		"NaN,nobody@example.com,,,140\n" +
		"Bob\n" +
		"Carol,carol@example.com,,,NULL,extra\n"
	table, err := ReadTable(writeFile(t, "clients.csv", []byte(data)))
	require.NoError(t, err)

	assert.Equal(t, []string{"Full Name", "Email", "Email.1", "Unnamed: 3", "Wt"}, table.Columns)
	require.Len(t, table.Rows, 4)
	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Columns))
	}

	name, ok := table.Cell(1, "Full Name")
	require.True(t, ok)
	assert.Equal(t, CellNullToken, name.Kind)

	padded, ok := table.Cell(2, "Wt")
	require.True(t, ok)
	assert.Equal(t, CellAbsent, padded.Kind)

	wt, _ := table.Cell(3, "Wt")
	assert.True(t, wt.IsNull())

	_, ok = table.Cell(0, "Weight")
	assert.False(t, ok)
}

func TestReadCSVWindows1252(t *testing.T) {
	data := []byte("Name,Notes\nJos\xe9,caf\xe9 au lait\n")
	table, err := ReadTable(writeFile(t, "latin.csv", data))
	require.NoError(t, err)

	cell, _ := table.Cell(0, "Name")
	assert.Equal(t, "José", cell.Text)
	notes, _ := table.Cell(0, "Notes")
	assert.Equal(t, "café au lait", notes.Text)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadTable(writeFile(t, "empty.csv", nil))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestReadXLSX(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Clients")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"Client Name", "Goal", "Weight"} {
		header.AddCell().SetString(h)
	}
	row := sheet.AddRow()
	row.AddCell().SetString("Alice")
	row.AddCell().SetFloat(135)
	row.AddCell().SetFloat(150.5)
	row = sheet.AddRow()
	row.AddCell().SetString("Bob")
	row.AddCell().SetString("n/a")
	row.AddCell().SetString("heavy")

	path := filepath.Join(t.TempDir(), "clients.xlsx")
	require.NoError(t, file.Save(path))

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Client Name", "Goal", "Weight"}, table.Columns)
	require.Len(t, table.Rows, 2)

	mapping := FieldMapping{}
	mapping.Set(FieldName, "Client Name")
	mapping.Set(FieldGoalWeight, "Goal")
	mapping.Set(FieldWeight, "Weight")
	records := CoerceRecords(table, mapping)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].Weight)
	assert.Equal(t, 150.5, *records[0].Weight)
	require.NotNil(t, records[0].GoalWeight)
	assert.Equal(t, 135.0, *records[0].GoalWeight)
	assert.Nil(t, records[1].GoalWeight)
	assert.Nil(t, records[1].Weight)
}

func TestReadTableCorruptWorkbook(t *testing.T) {
	_, err := ReadTable(writeFile(t, "broken.xlsx", []byte("definitely not a zip archive")))
	assert.ErrorIs(t, err, ErrUnreadableFile)
}

func TestNewTableColumnNames(t *testing.T) {
	table := NewTable([]string{"A", "A", "A.1", "", "A"}, nil)
	assert.Equal(t, []string{"A", "A.1", "A.1.1", "Unnamed: 3", "A.2"}, table.Columns)
	for _, c := range table.Columns {
		assert.True(t, table.HasColumn(c))
	}
}

func TestTextCell(t *testing.T) {
	assert.Equal(t, CellAbsent, TextCell("").Kind)
	for _, token := range []string{"nan", "NaN", "None", "NULL", "N/A", "#N/A", "<NA>"} {
		assert.Equal(t, CellNullToken, TextCell(token).Kind, token)
	}
	assert.Equal(t, CellPresent, TextCell("none").Kind)
	assert.Equal(t, CellPresent, TextCell("  ").Kind)
}

func TestTableSample(t *testing.T) {
	table := NewTable([]string{"Name", "Wt"}, [][]Cell{
		{TextCell("Alice"), TextCell("150")},
		{TextCell("Bob"), TextCell("")},
		{TextCell("Carol"), TextCell("160")},
		{TextCell("Dan"), TextCell("170")},
	})
	sample := table.Sample(3)
	assert.Contains(t, sample, "Name")
	assert.Contains(t, sample, "Alice")
	assert.Contains(t, sample, "NaN")
	assert.NotContains(t, sample, "Dan")
	assert.Len(t, table.Head(3).Rows, 3)
	assert.Len(t, table.Head(10).Rows, 4)
}
