package importbundle

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Format is a supported spreadsheet format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
}

// ReadTable loads the spreadsheet at path. The first row is the header.
func ReadTable(path string) (*Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var (
		header []string
		rows   [][]Cell
	)
	switch format {
	case FormatCSV:
		header, rows, err = readCSV(path)
	case FormatXLSX:
		header, rows, err = readXLSX(path)
	case FormatXLS:
		header, rows, err = readXLS(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyTable, filepath.Base(path))
	}
	return NewTable(header, rows), nil
}

func readCSV(path string) ([]string, [][]Cell, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	data, err := decodeText(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	rows := make([][]Cell, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]Cell, len(record))
		for i, v := range record {
			row[i] = TextCell(v)
		}
		rows = append(rows, row)
	}
	return records[0], rows, nil
}

// decodeText converts CSV bytes to UTF-8. A UTF-8 or UTF-16 byte order mark
// is honoured and removed; input that is not valid UTF-8 is read as Windows-1252.
func decodeText(data []byte) ([]byte, error) {
	var fallback transform.Transformer = encoding.Nop.NewDecoder()
	if !utf8.Valid(data) && !hasUnicodeBOM(data) {
		fallback = charmap.Windows1252.NewDecoder()
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	return out, err
}

func hasUnicodeBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

func readXLSX(path string) ([]string, [][]Cell, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	if len(f.Sheets) == 0 || len(f.Sheets[0].Rows) == 0 {
		return nil, nil, nil
	}
	sheet := f.Sheets[0]

	var header []string
	for _, cell := range sheet.Rows[0].Cells {
		header = append(header, cell.String())
	}
	header = trimTrailingEmpty(header)

	rows := make([][]Cell, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		if row == nil {
			continue
		}
		cells := make([]Cell, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = xlsxCell(cell)
		}
		rows = append(rows, cells)
	}
	return header, rows, nil
}

func xlsxCell(cell *xlsx.Cell) Cell {
	if cell == nil {
		return Cell{Kind: CellAbsent}
	}
	if cell.Type() == xlsx.CellTypeNumeric && cell.Value != "" {
		if v, err := cell.Float(); err == nil {
			return NumberCell(cell.Value, v)
		}
	}
	return TextCell(cell.String())
}

func readXLS(path string) ([]string, [][]Cell, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	if wb.NumSheets() == 0 {
		return nil, nil, nil
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil, nil
	}

	headerRow := sheet.Row(0)
	if headerRow == nil {
		return nil, nil, nil
	}
	var header []string
	for i := 0; i <= headerRow.LastCol(); i++ {
		header = append(header, headerRow.Col(i))
	}
	header = trimTrailingEmpty(header)

	rows := make([][]Cell, 0, int(sheet.MaxRow))
	for r := 1; r <= int(sheet.MaxRow); r++ {
		row := sheet.Row(r)
		if row == nil {
			continue
		}
		cells := make([]Cell, 0, len(header))
		for i := 0; i <= row.LastCol() && i < len(header); i++ {
			cells = append(cells, xlsCell(row.Col(i)))
		}
		rows = append(rows, cells)
	}
	return header, rows, nil
}

// xlsCell keeps numbers typed; the xls reader hands out formatted text.
func xlsCell(text string) Cell {
	cell := TextCell(text)
	if cell.Kind == CellPresent {
		if v, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return NumberCell(text, v)
		}
	}
	return cell
}

func trimTrailingEmpty(header []string) []string {
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	return header
}
