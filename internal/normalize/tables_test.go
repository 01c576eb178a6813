package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelf-cli/internal/schema"
)

func TestLookupFoldsCaseAndWhitespace(t *testing.T) {
	tables := DefaultTables()
	table := tables.Field(schema.ColProductType)

	v, ok := table.Lookup("  PURE JUICE  ")
	assert.True(t, ok)
	assert.Equal(t, "Pure Juices", v)
}

func TestLookupKnownTypo(t *testing.T) {
	tables := DefaultTables()
	table := tables.Field(schema.ColBrandedPrivate)

	v, ok := table.Lookup("Pirvate lable")
	assert.True(t, ok)
	assert.Equal(t, "Private Label", v)
}

func TestLookupUnknownSentinelFoldsToBlank(t *testing.T) {
	tables := DefaultTables()
	table := tables.Field(schema.ColShelfLevel)

	v, ok := table.Lookup("unkown")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestLookupStoreFormatSynonyms(t *testing.T) {
	tables := DefaultTables()
	table := tables.Field(schema.ColStoreFormat)

	for raw, want := range map[string]string{
		"Superstore":  "Hypermarket",
		"discounter":  "Discount",
		"Express":     "Convenience",
		"supermarket": "Supermarket",
	} {
		v, ok := table.Lookup(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, v, raw)
	}

	// Size words are deliberately not mapped; they go to external inference.
	_, ok := table.Lookup("large")
	assert.False(t, ok)
}

func TestLookupMissIsNotFound(t *testing.T) {
	tables := DefaultTables()
	table := tables.Field(schema.ColProductType)

	_, ok := table.Lookup("fizzy pop")
	assert.False(t, ok)
}

func TestLookupBlankNeverFound(t *testing.T) {
	tables := DefaultTables()
	table := tables.Field(schema.ColProductType)

	_, ok := table.Lookup("   ")
	assert.False(t, ok)
}

func TestProcessingMethodExtractionTermsFoldToBlank(t *testing.T) {
	tables := DefaultTables()
	table := tables.Field(schema.ColProcessingMethod)

	// These describe extraction, not processing.
	for _, raw := range []string{"cold pressed", "Cold-Pressed", "freshly squeezed"} {
		v, ok := table.Lookup(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, "", v, raw)
	}
}

func TestNormalizeFlavorAlias(t *testing.T) {
	tables := DefaultTables()
	assert.Equal(t, "Strawberry & Banana", tables.NormalizeFlavor("strawberry banana"))
}

func TestNormalizeFlavorSlashSeparator(t *testing.T) {
	tables := DefaultTables()
	assert.Equal(t, "Apple & Mango", tables.NormalizeFlavor("Apple / Mango"))
	assert.Equal(t, "Apple & Mango", tables.NormalizeFlavor("Apple/Mango"))
}

func TestNormalizeFlavorPassThrough(t *testing.T) {
	tables := DefaultTables()
	assert.Equal(t, "Orange", tables.NormalizeFlavor(" Orange "))
}

func TestLoadTablesMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	yaml := `
tables:
  Product Type:
    juicy drink: Pure Juices
flavor_aliases:
  beetroot apple: Beetroot & Apple
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	v, ok := tables.Field(schema.ColProductType).Lookup("Juicy Drink")
	assert.True(t, ok)
	assert.Equal(t, "Pure Juices", v)

	// Defaults survive the merge.
	v, ok = tables.Field(schema.ColProductType).Lookup("smoothie")
	assert.True(t, ok)
	assert.Equal(t, "Smoothies", v)

	assert.Equal(t, "Beetroot & Apple", tables.NormalizeFlavor("beetroot apple"))
}
