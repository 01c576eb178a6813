package model

import "fmt"

// ResolutionSource identifies which layer of the engine decided a value.
type ResolutionSource string

const (
	SourceRule       ResolutionSource = "rule"
	SourceAuthority  ResolutionSource = "authority"
	SourceExternal   ResolutionSource = "external"
	SourceUnresolved ResolutionSource = "unresolved"
)

// ResolutionRecord is one append-only audit entry: what was decided for one
// cell, by which layer, and why. Never mutated once written.
type ResolutionRecord struct {
	SourceFile string           `json:"source_file"`
	Row        int              `json:"row"`
	Field      string           `json:"field"`
	Original   string           `json:"original"`
	Resolved   string           `json:"resolved"` // blank means left empty
	Source     ResolutionSource `json:"source"`
	Rationale  string           `json:"rationale"`
}

// ConflictFlag marks a cell where the brand authority's value contradicts
// other explicit evidence on the row. The authority's value is still
// committed; the flag is surfaced for manual review.
type ConflictFlag struct {
	SourceFile     string `json:"source_file"`
	Row            int    `json:"row"`
	Field          string `json:"field"`
	Brand          string `json:"brand"`
	AuthorityValue string `json:"authority_value"`
	EvidenceValue  string `json:"evidence_value"`
	EvidenceSource string `json:"evidence_source"`
	MatchScore     int    `json:"match_score"`
}

func (c ConflictFlag) String() string {
	return fmt.Sprintf("row %d: %s conflict - brand %q says %q but %s indicates %q",
		c.Row, c.Field, c.Brand, c.AuthorityValue, c.EvidenceSource, c.EvidenceValue)
}

// FlaggedItem is one outstanding decision: a cell no deterministic layer
// could resolve, queued for external inference. It carries enough row
// context to be judged without re-reading the original record.
type FlaggedItem struct {
	SourceFile string `json:"source_file"`
	Row        int    `json:"row"`
	Field      string `json:"field"`
	Original   string `json:"original"`
	// Context holds sibling column values relevant to inference,
	// keyed by master column name. Blank columns are omitted.
	Context map[string]string `json:"context"`
	// ValidValues is the declared valid-value set for the target field,
	// empty for free-form fields.
	ValidValues []string `json:"valid_values,omitempty"`
	// FreeForm permits values outside ValidValues (e.g. Flavor).
	FreeForm bool `json:"free_form,omitempty"`
}
