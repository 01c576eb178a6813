// Package report validates the final dataset and assembles the quality
// report: categorical and required-field violations, per-column blank
// statistics, resolution tallies by source, and the conflicts and issues
// surfaced along the way.
package report

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/convert"
	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// Violation is one cell that breaks a schema rule in the final output.
type Violation struct {
	SourceFile string `json:"source_file"`
	Row        int    `json:"row"`
	Column     string `json:"column"`
	Value      string `json:"value,omitempty"`
	Reason     string `json:"reason"`
}

// Report is the full quality report for one processing run.
type Report struct {
	GeneratedBy string `json:"generated_by"`
	RunID       string `json:"run_id"`

	TotalRows   int            `json:"total_rows"`
	RowsPerFile map[string]int `json:"rows_per_file"`

	BlankCounts      map[string]int     `json:"blank_counts"`
	BlankPercentages map[string]float64 `json:"blank_percentages"`

	InvalidCategoricals []Violation `json:"invalid_categoricals"`
	InvalidNumerics     []Violation `json:"invalid_numerics"`
	MissingRequired     []Violation `json:"missing_required"`

	// ResolutionCounts tallies audit entries by deciding layer.
	ResolutionCounts map[string]int           `json:"resolution_counts"`
	Resolutions      []model.ResolutionRecord `json:"resolutions,omitempty"`
	Conflicts        []model.ConflictFlag     `json:"conflicts,omitempty"`
	ConversionIssues []convert.Issue          `json:"conversion_issues,omitempty"`

	ExchangeRates map[string]float64 `json:"exchange_rates"`
	Degraded      bool               `json:"degraded"` // external resolution was unavailable

	Clean bool `json:"clean"`
}

// Inputs carries everything the report aggregates beyond the records.
type Inputs struct {
	RunID            string
	Schema           *schema.Schema
	Resolutions      []model.ResolutionRecord
	Conflicts        []model.ConflictFlag
	ConversionIssues []convert.Issue
	ExchangeRates    map[string]float64
	Degraded         bool
}

// Build validates the merged records and assembles the report. Clean is
// false when any categorical, numeric, or required-field violation exists.
func Build(records []*model.Record, in Inputs) *Report {
	r := &Report{
		GeneratedBy:      "shelf-cli",
		RunID:            in.RunID,
		TotalRows:        len(records),
		RowsPerFile:      make(map[string]int),
		BlankCounts:      make(map[string]int),
		BlankPercentages: make(map[string]float64),
		ResolutionCounts: make(map[string]int),
		Resolutions:      in.Resolutions,
		Conflicts:        in.Conflicts,
		ConversionIssues: in.ConversionIssues,
		ExchangeRates:    in.ExchangeRates,
		Degraded:         in.Degraded,
	}

	for _, rec := range records {
		r.RowsPerFile[rec.SourceFile]++
	}

	for _, col := range schema.Columns {
		blanks := 0
		for _, rec := range records {
			if rec.Blank(col) {
				blanks++
			}
		}
		r.BlankCounts[col] = blanks
		if len(records) > 0 {
			r.BlankPercentages[col] = 100 * float64(blanks) / float64(len(records))
		}
	}

	r.InvalidCategoricals = validateCategoricals(records, in.Schema)
	r.InvalidNumerics = validateNumerics(records)
	r.MissingRequired = checkRequired(records)

	for _, res := range in.Resolutions {
		r.ResolutionCounts[string(res.Source)]++
	}

	r.Clean = len(r.InvalidCategoricals) == 0 &&
		len(r.InvalidNumerics) == 0 &&
		len(r.MissingRequired) == 0

	zap.L().Info("report: quality check complete",
		zap.Int("rows", r.TotalRows),
		zap.Int("invalid_categoricals", len(r.InvalidCategoricals)),
		zap.Int("invalid_numerics", len(r.InvalidNumerics)),
		zap.Int("missing_required", len(r.MissingRequired)),
		zap.Bool("clean", r.Clean),
	)

	return r
}

// validateCategoricals flags non-blank values outside their declared set.
func validateCategoricals(records []*model.Record, sch *schema.Schema) []Violation {
	var out []Violation
	for _, rec := range records {
		for _, col := range schema.Columns {
			if !sch.Constrained(col) || sch.FreeForm(col) {
				continue
			}
			v := rec.Get(col)
			if v == "" || sch.IsValid(col, v) {
				continue
			}
			out = append(out, Violation{
				SourceFile: rec.SourceFile,
				Row:        rec.Row,
				Column:     col,
				Value:      v,
				Reason:     fmt.Sprintf("value %q not in valid set", v),
			})
		}
	}
	return out
}

var numericColumns = []string{
	schema.ColShelfLevels,
	schema.ColFacings,
	schema.ColPackagingSize,
	schema.ColPriceLocal,
	schema.ColPriceEUR,
	schema.ColPricePerLiter,
	schema.ColLinearMeters,
	schema.ColConfidenceScore,
}

// validateNumerics flags non-blank numeric cells that survived conversion
// in non-numeric form.
func validateNumerics(records []*model.Record) []Violation {
	var out []Violation
	for _, rec := range records {
		for _, col := range numericColumns {
			v := rec.Get(col)
			if v == "" {
				continue
			}
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				out = append(out, Violation{
					SourceFile: rec.SourceFile,
					Row:        rec.Row,
					Column:     col,
					Value:      v,
					Reason:     "non-numeric value in numeric column",
				})
			}
		}
	}
	return out
}

// checkRequired flags blank cells in required columns.
func checkRequired(records []*model.Record) []Violation {
	var out []Violation
	for _, rec := range records {
		for _, col := range schema.Required {
			if rec.Blank(col) {
				out = append(out, Violation{
					SourceFile: rec.SourceFile,
					Row:        rec.Row,
					Column:     col,
					Reason:     "required column is blank",
				})
			}
		}
	}
	return out
}
