// Package brand implements the authority resolver: a fuzzy lookup of a
// record's brand against known brand mappings that, on a confident match,
// sets both brand-linked fields (extraction method and processing method)
// unconditionally, recording what it overwrote and flagging contradictions
// with other row evidence.
package brand

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shelfsight/shelf-cli/internal/match"
)

// MatchThreshold is the minimum fuzzy similarity (0-100) for a brand
// mapping to apply.
const MatchThreshold = 85

// DefaultMarket scopes lookups when a record's market has no mapping set.
const DefaultMarket = "UK"

// Mapping pairs a canonical brand name with the two values it authorizes.
type Mapping struct {
	Brand            string `yaml:"brand"`
	ExtractionMethod string `yaml:"extraction_method"`
	ProcessingMethod string `yaml:"processing_method"`
}

// Set holds brand mappings grouped by market. Immutable after load.
type Set struct {
	byMarket map[string][]Mapping
}

// setFile is the YAML shape of a brand mapping override file.
type setFile struct {
	Markets map[string][]Mapping `yaml:"markets"`
}

// DefaultSet returns the shipped brand mappings (UK market).
func DefaultSet() *Set {
	return &Set{byMarket: map[string][]Mapping{
		"UK": {
			// Cold-pressed + HPP brands.
			{Brand: "MOJU", ExtractionMethod: "Cold Pressed", ProcessingMethod: "HPP"},
			{Brand: "The Turmeric Co.", ExtractionMethod: "Cold Pressed", ProcessingMethod: "HPP"},
			{Brand: "Mockingbird", ExtractionMethod: "Cold Pressed", ProcessingMethod: "HPP"},
			{Brand: "Plenish", ExtractionMethod: "Cold Pressed", ProcessingMethod: "HPP"},
			// Squeezed + Pasteurized brands.
			{Brand: "Innocent", ExtractionMethod: "Squeezed", ProcessingMethod: "Pasteurized"},
			{Brand: "Tropicana", ExtractionMethod: "Squeezed", ProcessingMethod: "Pasteurized"},
			{Brand: "Copella", ExtractionMethod: "Squeezed", ProcessingMethod: "Pasteurized"},
			{Brand: "Cawston Press", ExtractionMethod: "Squeezed", ProcessingMethod: "Pasteurized"},
			{Brand: "James White", ExtractionMethod: "Squeezed", ProcessingMethod: "Pasteurized"},
			// From Concentrate + Pasteurized brands.
			{Brand: "Naked", ExtractionMethod: "From Concentrate", ProcessingMethod: "Pasteurized"},
			{Brand: "Juice Burst", ExtractionMethod: "From Concentrate", ProcessingMethod: "Pasteurized"},
			{Brand: "Happy Monkey", ExtractionMethod: "From Concentrate", ProcessingMethod: "Pasteurized"},
			{Brand: "Ocean Spray", ExtractionMethod: "From Concentrate", ProcessingMethod: "Pasteurized"},
			{Brand: "Welch's", ExtractionMethod: "From Concentrate", ProcessingMethod: "Pasteurized"},
			{Brand: "Don Simon", ExtractionMethod: "From Concentrate", ProcessingMethod: "Pasteurized"},
			{Brand: "Pommegreat", ExtractionMethod: "From Concentrate", ProcessingMethod: "Pasteurized"},
			{Brand: "POM", ExtractionMethod: "From Concentrate", ProcessingMethod: "Pasteurized"},
			{Brand: "POM Wonderful", ExtractionMethod: "From Concentrate", ProcessingMethod: "Pasteurized"},
		},
	}}
}

// Load reads a brand mapping file. Markets in the file replace the default
// set for that market wholesale; unlisted markets keep their defaults.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "brand: read mapping file")
	}

	var f setFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "brand: parse mapping file")
	}

	s := DefaultSet()
	for market, mappings := range f.Markets {
		s.byMarket[market] = mappings
	}
	return s, nil
}

// Match fuzzy-matches a raw brand string against the mappings for a market.
// Markets without a mapping set fall back to the default market. Ties go to
// the earlier mapping in declared order.
func (s *Set) Match(rawBrand, market string) (Mapping, int, bool) {
	mappings, ok := s.byMarket[market]
	if !ok {
		if market != "" {
			zap.L().Debug("brand: no mappings for market, using default",
				zap.String("market", market),
				zap.String("default", DefaultMarket),
			)
		}
		mappings = s.byMarket[DefaultMarket]
	}
	if len(mappings) == 0 {
		return Mapping{}, 0, false
	}

	candidates := make([]string, len(mappings))
	for i, m := range mappings {
		candidates[i] = m.Brand
	}

	result, ok := match.Best(rawBrand, candidates, MatchThreshold)
	if !ok {
		return Mapping{}, 0, false
	}

	for _, m := range mappings {
		if m.Brand == result.Candidate {
			return m, result.Score, true
		}
	}
	return Mapping{}, 0, false
}
