// Package schema declares the master output schema: column order, required
// columns, and the valid-value enumeration for every categorical field.
//
// The valid-value sets are deliberately loadable from YAML rather than
// frozen in code: the enumeration has drifted across schema revisions
// (whether "Raw" is a first-class processing method, whether a centrifugal
// extraction category exists) and downstream consumers pin their own
// revision via config.
package schema

import (
	"os"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Columns is the master column order of the consolidated output.
var Columns = []string{
	"Country",
	"City",
	"Retailer",
	"Store Format",
	"Store Name",
	"Photo",
	"Shelf Location",
	"Shelf Levels",
	"Shelf Level",
	"Product Type",
	"Branded/Private Label",
	"Brand",
	"Sub-brand",
	"Product Name",
	"Flavor",
	"Facings",
	"Price (Local Currency)",
	"Currency",
	"Price (EUR)",
	"Packaging Size (ml)",
	"Price per Liter (EUR)",
	"Need State",
	"Juice Extraction Method",
	"Processing Method",
	"HPP Treatment",
	"Packaging Type",
	"Claims",
	"Bonus/Promotions",
	"Stock Status",
	"Est. Linear Meters",
	"Fridge Number",
	"Confidence Score",
	"Notes",
}

// Required lists columns that must be populated in the final output.
var Required = []string{"Country", "City", "Retailer", "Store Name", "Currency"}

// Schema holds the valid-value enumeration and field classification used to
// validate every resolved value. Immutable after load.
type Schema struct {
	validValues map[string][]string
	freeForm    map[string]bool
}

// fileFormat is the YAML shape of a schema override file.
type fileFormat struct {
	ValidValues map[string][]string `yaml:"valid_values"`
	FreeForm    []string            `yaml:"free_form"`
}

// Default returns the shipped schema revision.
func Default() *Schema {
	return &Schema{
		validValues: map[string][]string{
			"Store Format":          {"Hypermarket", "Supermarket", "Discount", "Convenience", "Other"},
			"Shelf Location":        {"Chilled Section", "To-Go Section", "To-Go Section — Shots", "Meal Deal Section"},
			"Shelf Level":           {"1st", "2nd", "3rd", "4th", "5th", "6th"},
			"Product Type":          {"Pure Juices", "Smoothies", "Shots", "Other"},
			"Branded/Private Label": {"Branded", "Private Label"},
			"Need State":            {"Indulgence", "Functional"},
			"Juice Extraction Method": {
				"Squeezed", "Cold Pressed", "From Concentrate", "NA/Centrifugal",
			},
			"Processing Method": {"Pasteurized", "HPP", "Raw"},
			"HPP Treatment":     {"Yes", "No"},
			"Packaging Type":    {"PET Bottle", "Tetra Pak", "Can", "Carton", "Glass Bottle"},
			"Stock Status":      {"In Stock", "Out of Stock"},
			"Currency":          {"GBP", "EUR"},
		},
		freeForm: map[string]bool{
			"Flavor": true,
		},
	}
}

// Load reads a schema override file and merges it over the defaults.
// Fields present in the file replace the default enumeration wholesale.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "schema: read override file")
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "schema: parse override file")
	}

	s := Default()
	for field, values := range f.ValidValues {
		s.validValues[field] = slices.Clone(values)
	}
	for _, field := range f.FreeForm {
		s.freeForm[field] = true
	}
	return s, nil
}

// ValidValues returns the declared value set for a field in declaration
// order, or nil for unconstrained fields.
func (s *Schema) ValidValues(field string) []string {
	return s.validValues[field]
}

// FreeForm reports whether a field accepts values outside its valid set.
func (s *Schema) FreeForm(field string) bool {
	return s.freeForm[field]
}

// Constrained reports whether a field has a declared valid-value set.
func (s *Schema) Constrained(field string) bool {
	return len(s.validValues[field]) > 0
}

// IsValid reports whether a value may be written to a field. Blank is
// always acceptable; free-form fields accept anything; constrained fields
// require exact membership in the declared set.
func (s *Schema) IsValid(field, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	if s.freeForm[field] {
		return true
	}
	set, ok := s.validValues[field]
	if !ok {
		return true
	}
	return slices.Contains(set, value)
}
