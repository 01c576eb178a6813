package normalize

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/shelfsight/shelf-cli/internal/schema"
)

// Table maps a lowercase-trimmed raw string to its canonical value.
// An empty canonical value means "fold to blank": the raw string is a
// recognized way of saying "we don't know", and blank is the only honest
// representation of that.
type Table map[string]string

// Lookup folds case and whitespace and returns the canonical value.
// The second return is false when the raw string is not in the table,
// which means "not found", never "invalid".
func (t Table) Lookup(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	canonical, ok := t[key]
	return canonical, ok
}

// Tables is the full set of per-field normalization tables plus the field
// declaration order used for stable flag ordering. Immutable after load.
type Tables struct {
	fields []string
	byName map[string]Table
	// flavorAliases post-normalizes externally extracted Flavor values.
	flavorAliases Table
}

// tablesFile is the YAML shape of a tables override file.
type tablesFile struct {
	Tables        map[string]map[string]string `yaml:"tables"`
	FlavorAliases map[string]string            `yaml:"flavor_aliases"`
}

// DefaultTables returns the shipped lookup tables.
func DefaultTables() *Tables {
	return &Tables{
		fields: []string{
			schema.ColStoreFormat,
			schema.ColProductType,
			schema.ColNeedState,
			schema.ColBrandedPrivate,
			schema.ColProcessingMethod,
			schema.ColHPPTreatment,
			schema.ColPackagingType,
			schema.ColShelfLevel,
			schema.ColStockStatus,
			schema.ColShelfLocation,
		},
		byName: map[string]Table{
			// Size words like "small" or "large" are deliberately absent:
			// footprint does not identify a trade format, so those values go
			// to external inference with the row context.
			schema.ColStoreFormat: {
				"hypermarket":       "Hypermarket",
				"superstore":        "Hypermarket",
				"supermarket":       "Supermarket",
				"discount":          "Discount",
				"discounter":        "Discount",
				"convenience":       "Convenience",
				"convenience store": "Convenience",
				"express":           "Convenience",
				"other":             "Other",
			},
			schema.ColProductType: {
				"pure juices": "Pure Juices",
				"pure juice":  "Pure Juices",
				"smoothies":   "Smoothies",
				"smoothie":    "Smoothies",
				"shots":       "Shots",
				"shot":        "Shots",
				"other":       "Other",
			},
			schema.ColNeedState: {
				"indulgence": "Indulgence",
				"indulgent":  "Indulgence",
				"functional": "Functional",
			},
			schema.ColBrandedPrivate: {
				"branded":       "Branded",
				"private label": "Private Label",
				// known typo in source files
				"pirvate lable": "Private Label",
			},
			schema.ColProcessingMethod: {
				"pasteurized":       "Pasteurized",
				"pasteurised":       "Pasteurized",
				"flash pasteurised": "Pasteurized",
				// These describe extraction, not processing.
				"cold-pressed":     "",
				"cold pressed":     "",
				"pressed":          "",
				"freshly squeezed": "",
				"unpasteurised":    "",
				"unpasteurized":    "",
				"not pasteurised":  "",
				"hpp":              "HPP",
				"hpp treated":      "HPP",
				"hpp treatment":    "HPP",
				"unknown":          "",
				"unkown":           "",
			},
			schema.ColHPPTreatment: {
				"yes":           "Yes",
				"hpp treatment": "Yes",
				"hpp treated":   "Yes",
				"no":            "No",
				"pasteurized":   "No",
				"pasteurised":   "No",
				"unknown":       "",
				"unkown":        "",
				"unsure":        "",
				"cold pressed ? assumed": "",
			},
			schema.ColPackagingType: {
				"pet bottle":          "PET Bottle",
				"tetra pak":           "Tetra Pak",
				"tetrapak":            "Tetra Pak",
				"can":                 "Can",
				"carton":              "Carton",
				"carton (multi-pack)": "Carton",
				"glass bottle":        "Glass Bottle",
			},
			schema.ColShelfLevel: {
				"1st":          "1st",
				"1st (top)":    "1st",
				"1":            "1st",
				"top":          "1st",
				"2nd":          "2nd",
				"2":            "2nd",
				"3rd":          "3rd",
				"3":            "3rd",
				"4th":          "4th",
				"4":            "4th",
				"5th":          "5th",
				"5th (bottom)": "5th",
				"5":            "5th",
				"bottom":       "5th",
				"6th":          "6th",
				"6":            "6th",
				"unknown":      "",
				"unkown":       "",
			},
			schema.ColStockStatus: {
				"in stock":     "In Stock",
				"out of stock": "Out of Stock",
			},
			// Only exact matches are normalized here; every other non-blank
			// shelf location goes to external inference.
			schema.ColShelfLocation: {
				"chilled section":        "Chilled Section",
				"chilled drinks section": "Chilled Section",
				"to-go section":          "To-Go Section",
				"to-go section — shots":  "To-Go Section — Shots",
				"to-go section - shots":  "To-Go Section — Shots",
				"meal deal section":      "Meal Deal Section",
			},
		},
		flavorAliases: Table{
			"strawberry banana": "Strawberry & Banana",
			"ginger/turmeric":   "Ginger & Turmeric",
			"ginger / turmeric": "Ginger & Turmeric",
		},
	}
}

// LoadTables reads a tables override file and merges each entry over the
// defaults. Entries add to or replace individual raw-value mappings; they
// never remove a field's table.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "normalize: read tables file")
	}

	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "normalize: parse tables file")
	}

	t := DefaultTables()
	for field, entries := range f.Tables {
		table, ok := t.byName[field]
		if !ok {
			table = make(Table)
			t.byName[field] = table
			t.fields = append(t.fields, field)
		}
		for raw, canonical := range entries {
			table[strings.ToLower(strings.TrimSpace(raw))] = canonical
		}
	}
	for raw, canonical := range f.FlavorAliases {
		t.flavorAliases[strings.ToLower(strings.TrimSpace(raw))] = canonical
	}
	return t, nil
}

// Fields returns the table field names in declaration order.
func (t *Tables) Fields() []string {
	return t.fields
}

// Field returns the table for one field, or nil.
func (t *Tables) Field(name string) Table {
	return t.byName[name]
}
