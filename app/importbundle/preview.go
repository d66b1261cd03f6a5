package importbundle

// PreviewRowLimit is how many spreadsheet rows a preview looks at.
const PreviewRowLimit = 10

// PreviewRecords applies the import rules to the first PreviewRowLimit rows,
// so a preview is always a prefix of what a confirm would store.
func PreviewRecords(t *Table, mapping FieldMapping) []ImportRecord {
	return CoerceRecords(t.Head(PreviewRowLimit), mapping)
}
