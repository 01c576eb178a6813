package fetcher

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// Defaults are per-file values filled into every record where the sheet
// itself left the cell blank. Typically sourced from the manifest entry and
// the parsed filename.
type Defaults struct {
	Country     string
	City        string
	Retailer    string
	StoreFormat string
}

// ReadRecords parses one source workbook into records. Cells under
// unmappable headers are dropped; per-file defaults backfill the store
// identity columns.
func ReadRecords(path string, defaults Defaults) ([]*model.Record, error) {
	sheet, err := ReadXLSX(path, XLSXOptions{})
	if err != nil {
		return nil, err
	}

	mapped := MapColumns(sheet.Header)
	sourceFile := filepath.Base(path)

	records := make([]*model.Record, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		rec := model.NewRecord(sourceFile, i+1)
		for j, cell := range row {
			if j >= len(mapped) || mapped[j] == "" {
				continue
			}
			rec.Set(mapped[j], cell)
		}
		applyDefaults(rec, defaults)
		records = append(records, rec)
	}

	zap.L().Info("fetcher: read source file",
		zap.String("file", sourceFile),
		zap.Int("records", len(records)),
	)

	return records, nil
}

func applyDefaults(rec *model.Record, d Defaults) {
	if rec.Blank(schema.ColCountry) && d.Country != "" {
		rec.Set(schema.ColCountry, d.Country)
	}
	if rec.Blank(schema.ColCity) && d.City != "" {
		rec.Set(schema.ColCity, d.City)
	}
	if rec.Blank(schema.ColRetailer) && d.Retailer != "" {
		rec.Set(schema.ColRetailer, d.Retailer)
	}
	if rec.Blank(schema.ColStoreFormat) && d.StoreFormat != "" {
		rec.Set(schema.ColStoreFormat, d.StoreFormat)
	}
}

const masterSheetName = "Master"

// ReadMaster loads the consolidated master workbook. A missing file is not
// an error for the caller to handle here; callers check existence first.
func ReadMaster(path string) ([]*model.Record, error) {
	sheet, err := ReadXLSX(path, XLSXOptions{})
	if err != nil {
		return nil, err
	}

	mapped := MapColumns(sheet.Header)
	sourceFile := filepath.Base(path)

	records := make([]*model.Record, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		rec := model.NewRecord(sourceFile, i+1)
		rec.Master = true
		for j, cell := range row {
			if j >= len(mapped) || mapped[j] == "" {
				continue
			}
			rec.Set(mapped[j], cell)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteMaster writes records to the master workbook in schema column order.
func WriteMaster(path string, records []*model.Record) error {
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(schema.Columns))
		for j, col := range schema.Columns {
			row[j] = rec.Get(col)
		}
		rows[i] = row
	}

	if err := WriteXLSX(path, masterSheetName, schema.Columns, rows); err != nil {
		return err
	}

	zap.L().Info("fetcher: wrote master workbook",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return nil
}
