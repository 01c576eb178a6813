package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

func rec(t *testing.T, fields map[string]string) *model.Record {
	t.Helper()
	r := model.NewRecord("test.xlsx", 1)
	for k, v := range fields {
		r.Set(k, v)
	}
	return r
}

func TestNumericsStripsCurrencyAndSuffixes(t *testing.T) {
	r := rec(t, map[string]string{
		schema.ColPriceLocal:    "£2.50",
		schema.ColPackagingSize: "250ml",
		schema.ColFacings:       "3",
	})

	issues := Numerics([]*model.Record{r})
	assert.Empty(t, issues)
	assert.Equal(t, "2.50", r.Get(schema.ColPriceLocal))
	assert.Equal(t, "250", r.Get(schema.ColPackagingSize))
	assert.Equal(t, "3", r.Get(schema.ColFacings))
}

func TestNumericsThousandsSeparator(t *testing.T) {
	r := rec(t, map[string]string{schema.ColPackagingSize: "1,250 ml"})

	issues := Numerics([]*model.Record{r})
	assert.Empty(t, issues)
	assert.Equal(t, "1250", r.Get(schema.ColPackagingSize))
}

func TestNumericsUnknownFoldsToBlank(t *testing.T) {
	r := rec(t, map[string]string{schema.ColFacings: "unkown"})

	issues := Numerics([]*model.Record{r})
	assert.Empty(t, issues)
	assert.True(t, r.Blank(schema.ColFacings))
}

func TestNumericsUnconvertibleBlankedWithIssue(t *testing.T) {
	r := rec(t, map[string]string{schema.ColFacings: "lots"})

	issues := Numerics([]*model.Record{r})
	require.Len(t, issues, 1)
	assert.Equal(t, schema.ColFacings, issues[0].Column)
	assert.Equal(t, "lots", issues[0].Original)
	assert.True(t, r.Blank(schema.ColFacings))
}

func TestNumericsLinearMetersPrecision(t *testing.T) {
	r := rec(t, map[string]string{schema.ColLinearMeters: "1.25"})

	Numerics([]*model.Record{r})
	assert.Equal(t, "1.2", r.Get(schema.ColLinearMeters))
}

func TestConfidenceScoreFractionScale(t *testing.T) {
	r := rec(t, map[string]string{schema.ColConfidenceScore: "0.85"})

	issues := Numerics([]*model.Record{r})
	assert.Empty(t, issues)
	assert.Equal(t, "85", r.Get(schema.ColConfidenceScore))
}

func TestConfidenceScorePercentString(t *testing.T) {
	r := rec(t, map[string]string{schema.ColConfidenceScore: "90%"})

	Numerics([]*model.Record{r})
	assert.Equal(t, "90", r.Get(schema.ColConfidenceScore))
}

func TestConfidenceScoreZeroKept(t *testing.T) {
	r := rec(t, map[string]string{schema.ColConfidenceScore: "0"})

	Numerics([]*model.Record{r})
	assert.Equal(t, "0", r.Get(schema.ColConfidenceScore))
}

func TestConfidenceScoreOutOfRange(t *testing.T) {
	r := rec(t, map[string]string{schema.ColConfidenceScore: "150"})

	issues := Numerics([]*model.Record{r})
	require.Len(t, issues, 1)
	assert.True(t, r.Blank(schema.ColConfidenceScore))
}
