package consolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

func visit(t *testing.T, file string, row int, retailer, city, format string) *model.Record {
	t.Helper()
	r := model.NewRecord(file, row)
	r.Set(schema.ColRetailer, retailer)
	r.Set(schema.ColCity, city)
	r.Set(schema.ColStoreFormat, format)
	return r
}

func TestKeyOfCaseInsensitive(t *testing.T) {
	a := visit(t, "a.xlsx", 1, "Tesco", "Fulham", "Large")
	b := visit(t, "b.xlsx", 1, "tesco", "FULHAM", "large")
	assert.Equal(t, KeyOf(a), KeyOf(b))
	assert.Equal(t, "tesco|fulham|large", KeyOf(a).String())
}

func TestDetectOverlaps(t *testing.T) {
	master := []*model.Record{
		visit(t, "master.xlsx", 1, "Tesco", "Fulham", "Large"),
		visit(t, "master.xlsx", 2, "Tesco", "Fulham", "Large"),
		visit(t, "master.xlsx", 3, "Aldi", "Balham", "Small"),
	}
	incoming := []*model.Record{
		visit(t, "new.xlsx", 1, "tesco", "fulham", "large"),
		visit(t, "new.xlsx", 2, "Waitrose", "Pimlico", "Medium"),
	}

	overlaps := DetectOverlaps(master, incoming)
	require.Len(t, overlaps, 1)
	assert.Equal(t, "tesco|fulham|large", overlaps[0].Key.String())
	assert.Equal(t, 2, overlaps[0].MasterRows)
	assert.Equal(t, 1, overlaps[0].IncomingRows)
}

func TestMergeReplace(t *testing.T) {
	master := []*model.Record{
		visit(t, "master.xlsx", 1, "Tesco", "Fulham", "Large"),
		visit(t, "master.xlsx", 2, "Aldi", "Balham", "Small"),
	}
	incoming := []*model.Record{
		visit(t, "new.xlsx", 1, "Tesco", "Fulham", "Large"),
	}

	merged, sum, err := Merge(master, incoming, map[string]Decision{
		"tesco|fulham|large": Replace,
	})
	require.NoError(t, err)

	require.Len(t, merged, 2)
	// Surviving master row first, then the replacement.
	assert.Equal(t, "master.xlsx", merged[0].SourceFile)
	assert.Equal(t, "Aldi", merged[0].Get(schema.ColRetailer))
	assert.Equal(t, "new.xlsx", merged[1].SourceFile)
	assert.Equal(t, 1, sum.Replaced)
	assert.Equal(t, 0, sum.Added)
	assert.True(t, merged[1].Master)
}

func TestMergeSkip(t *testing.T) {
	master := []*model.Record{
		visit(t, "master.xlsx", 1, "Tesco", "Fulham", "Large"),
	}
	incoming := []*model.Record{
		visit(t, "new.xlsx", 1, "Tesco", "Fulham", "Large"),
		visit(t, "new.xlsx", 2, "Waitrose", "Pimlico", "Medium"),
	}

	merged, sum, err := Merge(master, incoming, map[string]Decision{
		"tesco|fulham|large": Skip,
	})
	require.NoError(t, err)

	require.Len(t, merged, 2)
	assert.Equal(t, "master.xlsx", merged[0].SourceFile)
	assert.Equal(t, "Waitrose", merged[1].Get(schema.ColRetailer))
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Added)
}

func TestMergeMissingDecisionErrors(t *testing.T) {
	master := []*model.Record{
		visit(t, "master.xlsx", 1, "Tesco", "Fulham", "Large"),
	}
	incoming := []*model.Record{
		visit(t, "new.xlsx", 1, "Tesco", "Fulham", "Large"),
	}

	_, _, err := Merge(master, incoming, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no decision")
}

func TestMergeNewVisitsNeedNoDecision(t *testing.T) {
	incoming := []*model.Record{
		visit(t, "new.xlsx", 1, "Waitrose", "Pimlico", "Medium"),
	}

	merged, sum, err := Merge(nil, incoming, nil)
	require.NoError(t, err)
	assert.Len(t, merged, 1)
	assert.Equal(t, 1, sum.Added)
}

func TestParseDecisions(t *testing.T) {
	d, err := ParseDecisions([]string{
		"Tesco|Fulham|Large=replace",
		"aldi|balham|small=SKIP",
	})
	require.NoError(t, err)
	assert.Equal(t, Replace, d["tesco|fulham|large"])
	assert.Equal(t, Skip, d["aldi|balham|small"])
}

func TestParseDecisionsMalformed(t *testing.T) {
	_, err := ParseDecisions([]string{"tesco|fulham|large"})
	assert.Error(t, err)

	_, err = ParseDecisions([]string{"tesco|fulham|large=merge"})
	assert.Error(t, err)
}
