package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// XLSXOptions configures the workbook parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	// MaxHeaderScan bounds how many leading rows are scanned for the
	// header. Observation sheets often carry a title row or two above it.
	MaxHeaderScan int
}

// Sheet is one parsed worksheet: the detected header and the data rows
// below it.
type Sheet struct {
	Header    []string
	HeaderRow int // zero-based index of the header in the source sheet
	Rows      [][]string
}

// ReadXLSX opens a workbook and returns the observation sheet with its
// header detected. The header is the first scanned row where at least half
// the non-empty cells are recognized column names.
func ReadXLSX(path string, opts XLSXOptions) (*Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rows = append(rows, rowToStrings(row))
	}

	scan := opts.MaxHeaderScan
	if scan <= 0 {
		scan = 10
	}
	headerRow := detectHeaderRow(rows, scan)
	if headerRow < 0 {
		return nil, eris.Errorf("xlsx: no header row found in first %d rows of %s", scan, path)
	}

	out := &Sheet{
		Header:    rows[headerRow],
		HeaderRow: headerRow,
	}
	for _, row := range rows[headerRow+1:] {
		if rowEmpty(row) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	zap.L().Debug("xlsx: parsed sheet",
		zap.String("path", path),
		zap.Int("header_row", headerRow),
		zap.Int("data_rows", len(out.Rows)),
	)

	return out, nil
}

// detectHeaderRow scans leading rows for one that looks like a header.
func detectHeaderRow(rows [][]string, maxScan int) int {
	for i := 0; i < len(rows) && i < maxScan; i++ {
		known, nonEmpty := 0, 0
		for _, cell := range rows[i] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, ok := headerNames[strings.ToLower(cell)]; ok {
				known++
			}
		}
		if nonEmpty >= 3 && known*2 >= nonEmpty {
			return i
		}
	}
	return -1
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// WriteXLSX writes a header and rows to a single-sheet workbook.
func WriteXLSX(path, sheetName string, header []string, rows [][]string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, name := range header {
		headerRow.AddCell().SetString(name)
	}

	for _, row := range rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "xlsx: save file")
	}
	return nil
}
