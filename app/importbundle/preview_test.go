package importbundle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewRecords(t *testing.T) {
	rows := make([][]Cell, 0, 25)
	for i := 0; i < 25; i++ {
		name := fmt.Sprintf("Client %02d", i)
		weight := fmt.Sprint(150 + i)
		switch i % 4 {
		case 1:
			name = "None"
		case 2:
			weight = "??"
		}
		rows = append(rows, []Cell{TextCell(name), TextCell(weight)})
	}
	table := NewTable([]string{"Name", "Weight"}, rows)
	mapping := mappingOf(map[Field]string{FieldName: "Name", FieldWeight: "Weight"})

	preview := PreviewRecords(table, mapping)
	all := CoerceRecords(table, mapping)

	assert.Len(t, preview, 7, "rows 1, 5 and 9 of the first ten have no name")
	require.LessOrEqual(t, len(preview), len(all))
	assert.Equal(t, all[:len(preview)], preview)
	assert.Nil(t, preview[1].Weight)
}

func TestPreviewRecordsShortTable(t *testing.T) {
	table := sampleTable()
	mapping := mappingOf(map[Field]string{FieldName: "Full Name", FieldEmail: "E-mail"})

	assert.Equal(t, CoerceRecords(table, mapping), PreviewRecords(table, mapping))
}
