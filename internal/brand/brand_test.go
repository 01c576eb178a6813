package brand

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchExactBrand(t *testing.T) {
	s := DefaultSet()

	m, score, ok := s.Match("MOJU", "UK")
	require.True(t, ok)
	assert.Equal(t, "MOJU", m.Brand)
	assert.Equal(t, 100, score)
	assert.Equal(t, "Cold Pressed", m.ExtractionMethod)
	assert.Equal(t, "HPP", m.ProcessingMethod)
}

func TestMatchMisspelledBrand(t *testing.T) {
	s := DefaultSet()

	m, score, ok := s.Match("Tropicanna", "UK")
	require.True(t, ok)
	assert.Equal(t, "Tropicana", m.Brand)
	assert.GreaterOrEqual(t, score, MatchThreshold)
}

func TestMatchBelowThreshold(t *testing.T) {
	s := DefaultSet()

	_, _, ok := s.Match("Completely Different Co", "UK")
	assert.False(t, ok)
}

func TestMatchBlankBrand(t *testing.T) {
	s := DefaultSet()

	_, _, ok := s.Match("", "UK")
	assert.False(t, ok)
}

func TestMatchUnknownMarketFallsBack(t *testing.T) {
	s := DefaultSet()

	m, _, ok := s.Match("Innocent", "FR")
	require.True(t, ok)
	assert.Equal(t, "Innocent", m.Brand)
}

func TestLoadReplacesMarketWholesale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brands.yaml")
	yaml := `
markets:
  FR:
    - brand: Andros
      extraction_method: From Concentrate
      processing_method: Pasteurized
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	m, _, ok := s.Match("Andros", "FR")
	require.True(t, ok)
	assert.Equal(t, "From Concentrate", m.ExtractionMethod)

	// UK defaults untouched.
	_, _, ok = s.Match("MOJU", "UK")
	assert.True(t, ok)
}
