package convert

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// countryCurrency maps observation countries to their local currency.
var countryCurrency = map[string]string{
	"United Kingdom": "GBP",
	"France":         "EUR",
	"Germany":        "EUR",
	"Netherlands":    "EUR",
}

// Rates maps a currency code to its EUR conversion rate.
type Rates map[string]float64

// DefaultRates is the fallback used when no rate override is configured.
func DefaultRates() Rates {
	return Rates{
		"GBP": 1.18,
		"EUR": 1.0,
	}
}

// Prices derives Currency, Price (EUR), Price per Liter (EUR), and Store
// Name for every record. Runs after Numerics so price and size cells are
// already canonical. Price per Liter is always recalculated rather than
// trusted from the source.
func Prices(records []*model.Record, rates Rates) []Issue {
	if rates == nil {
		rates = DefaultRates()
	}

	var issues []Issue
	for _, rec := range records {
		deriveCurrency(rec)
		derivePriceEUR(rec, rates)
		issues = derivePricePerLiter(rec, issues)
		deriveStoreName(rec)
	}

	zap.L().Info("convert: price derivation complete",
		zap.Int("records", len(records)),
		zap.Int("issues", len(issues)),
	)
	return issues
}

func deriveCurrency(rec *model.Record) {
	country := rec.Get(schema.ColCountry)
	if country == "" {
		return
	}
	currency, ok := countryCurrency[country]
	if !ok {
		zap.L().Warn("convert: unknown country, defaulting currency to EUR",
			zap.String("country", country))
		currency = "EUR"
	}
	rec.Set(schema.ColCurrency, currency)
}

func derivePriceEUR(rec *model.Record, rates Rates) {
	local := rec.Get(schema.ColPriceLocal)
	if local == "" {
		return
	}
	price, err := strconv.ParseFloat(local, 64)
	if err != nil {
		return
	}

	rate, ok := rates[rec.Get(schema.ColCurrency)]
	if !ok {
		rate = 1.0
	}
	rec.Set(schema.ColPriceEUR, strconv.FormatFloat(price*rate, 'f', 2, 64))
}

func derivePricePerLiter(rec *model.Record, issues []Issue) []Issue {
	eur := rec.Get(schema.ColPriceEUR)
	size := rec.Get(schema.ColPackagingSize)
	if eur == "" || size == "" {
		return issues
	}

	price, err1 := strconv.ParseFloat(eur, 64)
	ml, err2 := strconv.ParseFloat(size, 64)
	if err1 != nil || err2 != nil {
		return issues
	}
	if ml == 0 {
		rec.Clear(schema.ColPricePerLiter)
		return append(issues, issue(rec, schema.ColPricePerLiter, size,
			"packaging size is 0, cannot calculate price per liter"))
	}

	rec.Set(schema.ColPricePerLiter, strconv.FormatFloat(price/(ml/1000), 'f', 2, 64))
	return issues
}

// deriveStoreName builds "Retailer City" when both parts are present.
// A Store Name already in the source is kept as entered.
func deriveStoreName(rec *model.Record) {
	if !rec.Blank(schema.ColStoreName) {
		return
	}
	retailer := rec.Get(schema.ColRetailer)
	city := rec.Get(schema.ColCity)
	if retailer == "" || city == "" {
		return
	}
	rec.Set(schema.ColStoreName, retailer+" "+city)
}
