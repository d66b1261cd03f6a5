package importbundle

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mappingOf(pairs map[Field]string) FieldMapping {
	var m FieldMapping
	for f, col := range pairs {
		m.Set(f, col)
	}
	return m
}

func TestCoerceRecordsEndToEnd(t *testing.T) {
	table := NewTable([]string{"Full Name", "Wt"}, [][]Cell{
		{TextCell("Alice"), TextCell("150")},
		{TextCell("nan"), TextCell("140")},
		{TextCell("Bob"), TextCell("not-a-number")},
	})
	records := CoerceRecords(table, mappingOf(map[Field]string{FieldName: "Full Name", FieldWeight: "Wt"}))

	require.Len(t, records, 2)
	assert.Equal(t, "Alice", records[0].Name)
	require.NotNil(t, records[0].Weight)
	assert.Equal(t, 150.0, *records[0].Weight)
	assert.Equal(t, "Bob", records[1].Name)
	assert.Nil(t, records[1].Weight)
	assert.Nil(t, records[1].Email)
	assert.Nil(t, records[1].GoalWeight)
	assert.Nil(t, records[1].Notes)
}

func TestCoerceRecordsDropsRowsWithoutName(t *testing.T) {
	names := []string{"nan", "NaN", "None", "none", "NONE", "", "   ", "null", "  Dana  "}
	rows := make([][]Cell, 0, len(names))
	for i, n := range names {
		rows = append(rows, []Cell{TextCell(n), TextCell(fmt.Sprint(i))})
	}
	table := NewTable([]string{"Name", "Row"}, rows)
	records := CoerceRecords(table, mappingOf(map[Field]string{FieldName: "Name"}))

	require.Len(t, records, 1)
	assert.Equal(t, "Dana", records[0].Name)
}

func TestCoerceRecordsFields(t *testing.T) {
	table := NewTable([]string{"Name", "Mail", "Goal", "Notes", "Weight"}, [][]Cell{
		{TextCell(" Alice "), TextCell(" alice@example.com "), TextCell("135"), TextCell(" knee "), NumberCell("150.5", 150.5)},
		{TextCell("Bob"), TextCell("  "), TextCell("heavy"), TextCell("N/A"), TextCell("inf")},
		{TextCell("Carol"), TextCell(""), TextCell(" 1e2 "), TextCell(""), TextCell("NaN")},
	})
	mapping := mappingOf(map[Field]string{
		FieldName: "Name", FieldEmail: "Mail", FieldGoalWeight: "Goal", FieldNotes: "Notes", FieldWeight: "Weight",
	})
	records := CoerceRecords(table, mapping)
	require.Len(t, records, 3)

	alice := records[0]
	assert.Equal(t, "Alice", alice.Name)
	require.NotNil(t, alice.Email)
	assert.Equal(t, "alice@example.com", *alice.Email)
	assert.Equal(t, 135.0, *alice.GoalWeight)
	assert.Equal(t, "knee", *alice.Notes)
	assert.Equal(t, 150.5, *alice.Weight)

	bob := records[1]
	assert.Nil(t, bob.Email)
	assert.Nil(t, bob.GoalWeight)
	assert.Nil(t, bob.Notes)
	assert.Nil(t, bob.Weight)

	carol := records[2]
	require.NotNil(t, carol.GoalWeight)
	assert.Equal(t, 100.0, *carol.GoalWeight)
	assert.Nil(t, carol.Weight)
}

func TestCoerceRecordsUnknownColumns(t *testing.T) {
	table := sampleTable()

	assert.Empty(t, CoerceRecords(table, FieldMapping{}))
	assert.Empty(t, CoerceRecords(table, mappingOf(map[Field]string{FieldName: "Client"})))

	records := CoerceRecords(table, mappingOf(map[Field]string{FieldName: "Full Name", FieldWeight: "Weight"}))
	require.Len(t, records, 4)
	for _, rec := range records {
		assert.Nil(t, rec.Weight)
	}
}

func TestCoerceRecordsKeepsRowsConsistent(t *testing.T) {
	rows := make([][]Cell, 0, 50)
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf(" client %d ", i)
		if i%7 == 0 {
			name = "nan"
		}
		rows = append(rows, []Cell{TextCell(name), TextCell(fmt.Sprint(100 + i))})
	}
	table := NewTable([]string{"Name", "Weight"}, rows)
	records := CoerceRecords(table, mappingOf(map[Field]string{FieldName: "Name", FieldWeight: "Weight"}))

	assert.LessOrEqual(t, len(records), len(table.Rows))
	for _, rec := range records {
		assert.NotEmpty(t, rec.Name)
		assert.Equal(t, strings.TrimSpace(rec.Name), rec.Name)
	}
}
