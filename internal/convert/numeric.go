// Package convert handles the typed-value edge of the engine: coercing
// text-stored numbers into canonical numeric form and deriving the price
// columns. Cells that cannot be coerced are blanked and reported, never
// guessed.
package convert

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// Issue is one cell that failed conversion or derivation. The cell is
// blanked; the issue feeds the quality report.
type Issue struct {
	SourceFile string `json:"source_file"`
	Row        int    `json:"row"`
	Column     string `json:"column"`
	Original   string `json:"original"`
	Reason     string `json:"reason"`
}

var integerColumns = []string{
	schema.ColShelfLevels,
	schema.ColFacings,
	schema.ColPackagingSize,
}

var floatColumns = []string{
	schema.ColPriceLocal,
	schema.ColPriceEUR,
	schema.ColPricePerLiter,
	schema.ColLinearMeters,
}

var (
	currencySymbolRe = regexp.MustCompile(`[£€$]`)
	mlSuffixRe       = regexp.MustCompile(`(?i)\s*ml\b`)
	thousandsSepRe   = regexp.MustCompile(`(\d),(\d{3})`)
)

// unknownStrings are spellings of "we don't know" that convert to blank
// rather than erroring.
var unknownStrings = map[string]bool{
	"unknown": true,
	"unkown":  true,
	"n/a":     true,
	"na":      true,
	"-":       true,
	"—":       true,
}

// Numerics coerces every numeric column of every record into canonical
// form. Unconvertible cells are blanked and returned as issues.
func Numerics(records []*model.Record) []Issue {
	var issues []Issue

	for _, rec := range records {
		for _, col := range integerColumns {
			issues = convertCell(rec, col, true, issues)
		}
		for _, col := range floatColumns {
			issues = convertCell(rec, col, false, issues)
		}
		issues = convertConfidence(rec, issues)
	}

	zap.L().Info("convert: numeric conversion complete",
		zap.Int("records", len(records)),
		zap.Int("issues", len(issues)),
	)
	return issues
}

func convertCell(rec *model.Record, col string, integer bool, issues []Issue) []Issue {
	raw := rec.Get(col)
	if raw == "" {
		return issues
	}
	if unknownStrings[strings.ToLower(raw)] {
		rec.Clear(col)
		return issues
	}

	cleaned := cleanNumericString(raw)
	if cleaned == "" {
		rec.Clear(col)
		return append(issues, issue(rec, col, raw, "value is empty after cleaning"))
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		rec.Clear(col)
		return append(issues, issue(rec, col, raw, fmt.Sprintf("cannot convert %q to number", raw)))
	}

	rec.Set(col, formatNumeric(col, f, integer))
	return issues
}

// cleanNumericString strips currency symbols, "ml" suffixes, percent signs,
// and thousands separators.
func cleanNumericString(raw string) string {
	s := currencySymbolRe.ReplaceAllString(raw, "")
	s = mlSuffixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "%", "")
	for thousandsSepRe.MatchString(s) {
		s = thousandsSepRe.ReplaceAllString(s, "$1$2")
	}
	return strings.TrimSpace(s)
}

// formatNumeric renders a parsed number in the column's canonical form:
// prices to two decimals, linear meters to one, integers rounded.
func formatNumeric(col string, f float64, integer bool) string {
	if integer {
		return strconv.Itoa(int(math.Round(f)))
	}
	switch col {
	case schema.ColPriceLocal, schema.ColPriceEUR, schema.ColPricePerLiter:
		return strconv.FormatFloat(f, 'f', 2, 64)
	case schema.ColLinearMeters:
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// convertConfidence normalizes the Confidence Score's variable scale:
// 0-1 fractions and percentage strings both land on the 0-100 integer
// scale; out-of-range values are blanked as errors.
func convertConfidence(rec *model.Record, issues []Issue) []Issue {
	raw := rec.Get(schema.ColConfidenceScore)
	if raw == "" {
		return issues
	}
	if unknownStrings[strings.ToLower(raw)] {
		rec.Clear(schema.ColConfidenceScore)
		return issues
	}

	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		rec.Clear(schema.ColConfidenceScore)
		return append(issues, issue(rec, schema.ColConfidenceScore, raw,
			fmt.Sprintf("cannot convert confidence score %q to number", raw)))
	}

	switch {
	case f < 0:
		rec.Clear(schema.ColConfidenceScore)
		return append(issues, issue(rec, schema.ColConfidenceScore, raw, "confidence score is negative"))
	case f > 100:
		rec.Clear(schema.ColConfidenceScore)
		return append(issues, issue(rec, schema.ColConfidenceScore, raw, "confidence score exceeds 100"))
	case f == 0:
		rec.Set(schema.ColConfidenceScore, "0")
	case f <= 1:
		// 0-1 scale.
		rec.Set(schema.ColConfidenceScore, strconv.Itoa(int(math.Round(f*100))))
	default:
		rec.Set(schema.ColConfidenceScore, strconv.Itoa(int(math.Round(f))))
	}
	return issues
}

func issue(rec *model.Record, col, original, reason string) Issue {
	return Issue{
		SourceFile: rec.SourceFile,
		Row:        rec.Row,
		Column:     col,
		Original:   original,
		Reason:     reason,
	}
}
