package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidValues(t *testing.T) {
	s := Default()

	assert.True(t, s.IsValid(ColProductType, "Pure Juices"))
	assert.False(t, s.IsValid(ColProductType, "Juice"))
	assert.Contains(t, s.ValidValues(ColProcessingMethod), "Raw")
	assert.Contains(t, s.ValidValues(ColExtractionMethod), "NA/Centrifugal")
}

func TestBlankAlwaysValid(t *testing.T) {
	s := Default()
	assert.True(t, s.IsValid(ColProductType, ""))
	assert.True(t, s.IsValid(ColProductType, "   "))
}

func TestFreeFormFlavor(t *testing.T) {
	s := Default()
	assert.True(t, s.FreeForm(ColFlavor))
	assert.True(t, s.IsValid(ColFlavor, "Mango & Passionfruit"))
	assert.False(t, s.Constrained(ColFlavor))
}

func TestUnconstrainedColumnsAcceptAnything(t *testing.T) {
	s := Default()
	assert.False(t, s.Constrained(ColNotes))
	assert.True(t, s.IsValid(ColNotes, "anything goes"))
}

func TestLoadOverrideReplacesSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	yaml := `
valid_values:
  Product Type: ["Pure Juices", "Smoothies", "Shots", "Kefir", "Other"]
free_form:
  - Claims
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.True(t, s.IsValid(ColProductType, "Kefir"))
	assert.True(t, s.FreeForm(ColClaims))
	// Untouched fields keep defaults.
	assert.True(t, s.IsValid(ColProcessingMethod, "HPP"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRequiredColumnsAreInSchema(t *testing.T) {
	for _, col := range Required {
		assert.Contains(t, Columns, col)
	}
}
