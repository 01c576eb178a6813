package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

func TestPricesUKRow(t *testing.T) {
	r := rec(t, map[string]string{
		schema.ColCountry:       "United Kingdom",
		schema.ColRetailer:      "Tesco",
		schema.ColCity:          "Fulham",
		schema.ColPriceLocal:    "2.50",
		schema.ColPackagingSize: "250",
	})

	issues := Prices([]*model.Record{r}, nil)
	assert.Empty(t, issues)

	assert.Equal(t, "GBP", r.Get(schema.ColCurrency))
	// 2.50 * 1.18 = 2.95
	assert.Equal(t, "2.95", r.Get(schema.ColPriceEUR))
	// 2.95 / 0.25L = 11.80
	assert.Equal(t, "11.80", r.Get(schema.ColPricePerLiter))
	assert.Equal(t, "Tesco Fulham", r.Get(schema.ColStoreName))
}

func TestPricesEuroCountryIdentityRate(t *testing.T) {
	r := rec(t, map[string]string{
		schema.ColCountry:    "France",
		schema.ColPriceLocal: "3.00",
	})

	Prices([]*model.Record{r}, nil)
	assert.Equal(t, "EUR", r.Get(schema.ColCurrency))
	assert.Equal(t, "3.00", r.Get(schema.ColPriceEUR))
}

func TestPricesUnknownCountryDefaultsEUR(t *testing.T) {
	r := rec(t, map[string]string{schema.ColCountry: "Atlantis"})

	Prices([]*model.Record{r}, nil)
	assert.Equal(t, "EUR", r.Get(schema.ColCurrency))
}

func TestPricesRateOverride(t *testing.T) {
	r := rec(t, map[string]string{
		schema.ColCountry:    "United Kingdom",
		schema.ColPriceLocal: "1.00",
	})

	Prices([]*model.Record{r}, Rates{"GBP": 1.21, "EUR": 1.0})
	assert.Equal(t, "1.21", r.Get(schema.ColPriceEUR))
}

func TestPricesZeroPackagingSize(t *testing.T) {
	r := rec(t, map[string]string{
		schema.ColCountry:       "United Kingdom",
		schema.ColPriceLocal:    "2.00",
		schema.ColPackagingSize: "0",
	})

	issues := Prices([]*model.Record{r}, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.ColPricePerLiter, issues[0].Column)
	assert.True(t, r.Blank(schema.ColPricePerLiter))
}

func TestPricesMissingPriceLeavesDerivedBlank(t *testing.T) {
	r := rec(t, map[string]string{schema.ColCountry: "United Kingdom"})

	issues := Prices([]*model.Record{r}, nil)
	assert.Empty(t, issues)
	assert.True(t, r.Blank(schema.ColPriceEUR))
	assert.True(t, r.Blank(schema.ColPricePerLiter))
}

func TestPricesStoreNameKeptWhenPresent(t *testing.T) {
	r := rec(t, map[string]string{
		schema.ColRetailer:  "Tesco",
		schema.ColCity:      "Fulham",
		schema.ColStoreName: "Tesco Fulham Broadway",
	})

	Prices([]*model.Record{r}, nil)
	assert.Equal(t, "Tesco Fulham Broadway", r.Get(schema.ColStoreName))
}

func TestPricesStoreNameNeedsBothParts(t *testing.T) {
	r := rec(t, map[string]string{schema.ColRetailer: "Tesco"})

	Prices([]*model.Record{r}, nil)
	assert.True(t, r.Blank(schema.ColStoreName))
}
