package fetcher

import (
	"strings"

	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/match"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// columnRenames maps raw header spellings (lowercase) that differ
// semantically from the master schema to their master column.
var columnRenames = map[string]string{
	"photo file name":         "Photo",
	"segment":                 schema.ColProductType,
	"sub-segment":             schema.ColNeedState,
	"branded / private label": schema.ColBrandedPrivate,
	"bonus":                   "Bonus/Promotions",
	// Price columns arrive labelled with whatever the local currency is.
	"price (gbp)":    schema.ColPriceLocal,
	"price (eur)":    schema.ColPriceLocal,
	"price (pounds)": schema.ColPriceLocal,
	// Per-liter variants are mapped but always recalculated downstream.
	"price per liter (gbp)": schema.ColPricePerLiter,
	"price per liter (eur)": schema.ColPricePerLiter,
}

// headerNames is every spelling that can appear in a header row, used for
// header detection.
var headerNames = buildHeaderNames()

func buildHeaderNames() map[string]bool {
	names := make(map[string]bool, len(schema.Columns)+len(columnRenames))
	for _, col := range schema.Columns {
		names[strings.ToLower(col)] = true
	}
	for raw := range columnRenames {
		names[raw] = true
	}
	return names
}

// MapColumns maps a raw header to master column names. Unmappable headers
// come back as "" in the returned slice; their cells are dropped. Matching
// order: exact master name, known rename, fuzzy against the master schema.
func MapColumns(header []string) []string {
	mapped := make([]string, len(header))

	exact := make(map[string]string, len(schema.Columns))
	for _, col := range schema.Columns {
		exact[strings.ToLower(col)] = col
	}

	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			continue
		}

		if col, ok := exact[key]; ok {
			mapped[i] = col
			continue
		}
		if col, ok := columnRenames[key]; ok {
			mapped[i] = col
			continue
		}

		if result, ok := match.Best(key, schema.Columns, match.DefaultThreshold); ok {
			zap.L().Debug("fetcher: fuzzy-mapped column",
				zap.String("raw", raw),
				zap.String("master", result.Candidate),
				zap.Int("score", result.Score),
			)
			mapped[i] = result.Candidate
			continue
		}

		zap.L().Warn("fetcher: unmapped column, cells will be dropped",
			zap.String("raw", raw))
	}

	return mapped
}
