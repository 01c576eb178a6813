package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

func TestReadRecordsRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tesco_fulham_large.xlsx")
	header := []string{"Brand", "Product Name", "Segment", "Price (GBP)"}
	rows := [][]string{
		{"MOJU", "Ginger Shot", "Shot", "£2.50"},
		{"Innocent", "Smooth OJ", "Juice", "3.00"},
	}
	require.NoError(t, WriteXLSX(path, "Sheet1", header, rows))

	records, err := ReadRecords(path, Defaults{Country: "United Kingdom", City: "Fulham"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "tesco_fulham_large.xlsx", first.SourceFile)
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "MOJU", first.Get(schema.ColBrand))
	assert.Equal(t, "Shot", first.Get(schema.ColProductType))
	assert.Equal(t, "£2.50", first.Get(schema.ColPriceLocal))
	assert.Equal(t, "United Kingdom", first.Get(schema.ColCountry))
	assert.Equal(t, "Fulham", first.Get(schema.ColCity))
}

func TestReadRecordsHeaderBelowTitleRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	// single-cell title row above the real header
	require.NoError(t, WriteXLSX(path, "Sheet1",
		[]string{"Shelf Observation Export"},
		[][]string{
			{"Brand", "Product Name", "Flavor"},
			{"MOJU", "Ginger Shot", "Ginger"},
		},
	))

	records, err := ReadRecords(path, Defaults{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "MOJU", records[0].Get(schema.ColBrand))
}

func TestReadRecordsSkipsEmptyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaps.xlsx")
	require.NoError(t, WriteXLSX(path, "Sheet1",
		[]string{"Brand", "Product Name", "Flavor"},
		[][]string{
			{"MOJU", "Ginger Shot", "Ginger"},
			{"", "", ""},
			{"Innocent", "Smooth OJ", "Orange"},
		},
	))

	records, err := ReadRecords(path, Defaults{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Innocent", records[1].Get(schema.ColBrand))
}

func TestReadRecordsDefaultsDoNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explicit.xlsx")
	require.NoError(t, WriteXLSX(path, "Sheet1",
		[]string{"Brand", "Retailer", "City"},
		[][]string{{"MOJU", "Waitrose", "Strand"}},
	))

	records, err := ReadRecords(path, Defaults{Retailer: "Tesco", City: "Fulham"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Waitrose", records[0].Get(schema.ColRetailer))
	assert.Equal(t, "Strand", records[0].Get(schema.ColCity))
}

func TestWriteReadMasterRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.xlsx")

	r := model.NewRecord("tesco_fulham_large.xlsx", 1)
	r.Set(schema.ColBrand, "MOJU")
	r.Set(schema.ColRetailer, "Tesco")
	r.Set(schema.ColCity, "Fulham")
	r.Set(schema.ColPriceLocal, "2.50")

	require.NoError(t, WriteMaster(path, []*model.Record{r}))

	records, err := ReadMaster(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.True(t, got.Master)
	assert.Equal(t, "MOJU", got.Get(schema.ColBrand))
	assert.Equal(t, "Tesco", got.Get(schema.ColRetailer))
	assert.Equal(t, "2.50", got.Get(schema.ColPriceLocal))
}

func TestReadXLSXNoHeaderFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.xlsx")
	require.NoError(t, WriteXLSX(path, "Sheet1",
		[]string{"a", "b"},
		[][]string{{"1", "2"}},
	))

	_, err := ReadXLSX(path, XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}
