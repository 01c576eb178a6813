package normalize

import (
	"strings"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// Rule is one step of a field's deterministic cascade: a named predicate
// over the whole record paired with the canonical value it yields. Rules
// are evaluated strictly in declared order, first match wins. Predicates
// must be pure; a blank operand never satisfies a predicate.
type Rule struct {
	Name    string
	Matches func(r *model.Record) bool
	Value   string
}

// ApplyCascade evaluates an ordered rule list against a record and returns
// the first matching rule's value and name. ok=false means no rule matched
// and the field stays unresolved.
func ApplyCascade(rec *model.Record, rules []Rule) (value, rule string, ok bool) {
	for _, r := range rules {
		if r.Matches(rec) {
			return r.Value, r.Name, true
		}
	}
	return "", "", false
}

// claimsText concatenates the free-text evidence columns, lowercased, for
// substring predicates.
func claimsText(r *model.Record) string {
	return strings.ToLower(r.Get(schema.ColClaims) + " " + r.Get(schema.ColNotes))
}

// ExtractionMethodRules returns the cascade that infers Juice Extraction
// Method from sibling columns when the cell itself is blank or unmapped.
func ExtractionMethodRules() []Rule {
	return []Rule{
		{
			Name:    "HPP Treatment = Yes",
			Matches: func(r *model.Record) bool { return r.Equals(schema.ColHPPTreatment, "Yes") },
			Value:   "Cold Pressed",
		},
		{
			Name:    "Processing Method = HPP",
			Matches: func(r *model.Record) bool { return r.Equals(schema.ColProcessingMethod, "HPP") },
			Value:   "Cold Pressed",
		},
		{
			Name:    "Processing Method = Freshly Squeezed",
			Matches: func(r *model.Record) bool { return r.EqualsFold(schema.ColProcessingMethod, "Freshly Squeezed") },
			Value:   "Squeezed",
		},
		{
			Name: "Claims/Notes contain 'not from concentrate'",
			Matches: func(r *model.Record) bool {
				return strings.Contains(claimsText(r), "not from concentrate")
			},
			Value: "Squeezed",
		},
		{
			Name: "Claims/Notes contain 'from concentrate'",
			Matches: func(r *model.Record) bool {
				text := claimsText(r)
				return strings.Contains(text, "from concentrate") &&
					!strings.Contains(text, "not from concentrate")
			},
			Value: "From Concentrate",
		},
		{
			Name: "Claims/Notes contain 'cold pressed'",
			Matches: func(r *model.Record) bool {
				text := claimsText(r)
				return strings.Contains(text, "cold pressed") || strings.Contains(text, "cold-pressed")
			},
			Value: "Cold Pressed",
		},
		{
			Name: "Claims/Notes contain 'squeezed'",
			Matches: func(r *model.Record) bool {
				return strings.Contains(claimsText(r), "squeezed")
			},
			Value: "Squeezed",
		},
	}
}
