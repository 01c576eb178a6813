// Package normalize implements the deterministic half of the resolution
// engine: per-field lookup tables, the cross-column and extraction-method
// rule cascades, the brand authority hand-off, and aggregation of
// everything unresolved into a stable-ordered flag queue for external
// inference.
package normalize

import (
	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/brand"
	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// contextColumns are included with every flagged item so the external
// resolver can judge it without re-reading the record.
var contextColumns = []string{
	schema.ColRetailer,
	schema.ColCity,
	schema.ColBrand,
	schema.ColSubBrand,
	schema.ColProductName,
	schema.ColFlavor,
	schema.ColProductType,
	schema.ColProcessingMethod,
	schema.ColHPPTreatment,
	schema.ColClaims,
	schema.ColNotes,
	schema.ColShelfLocation,
}

// Normalizer applies the deterministic resolution layers to a source file's
// records. All inputs are immutable for the duration of a run, so one
// Normalizer may be shared across goroutines.
type Normalizer struct {
	tables          *Tables
	schema          *schema.Schema
	brands          *brand.Set
	extractionRules []Rule
}

// New builds a Normalizer from loaded configuration objects.
func New(tables *Tables, sch *schema.Schema, brands *brand.Set) *Normalizer {
	return &Normalizer{
		tables:          tables,
		schema:          sch,
		brands:          brands,
		extractionRules: ExtractionMethodRules(),
	}
}

// Result is the outcome of normalizing one source file. Records are
// mutated in place; Flagged preserves input row order then field
// declaration order, as required for deterministic batch splitting.
type Result struct {
	Flagged     []model.FlaggedItem
	Resolutions []model.ResolutionRecord
	Conflicts   []model.ConflictFlag
}

// File runs the deterministic layers over every record of one source file.
// Records that reach the end with unresolved fields contribute FlaggedItems
// in stable order.
func (n *Normalizer) File(records []*model.Record, market string) *Result {
	res := &Result{}

	for _, rec := range records {
		n.record(rec, market, res)
	}

	zap.L().Info("normalize: file complete",
		zap.Int("records", len(records)),
		zap.Int("resolved", len(res.Resolutions)),
		zap.Int("flagged", len(res.Flagged)),
		zap.Int("conflicts", len(res.Conflicts)),
	)

	return res
}

// record applies tables, cascades, and the brand authority to one record,
// appending flags for whatever stays unresolved.
func (n *Normalizer) record(rec *model.Record, market string, res *Result) {
	var pending []model.FlaggedItem

	// Layer 1: per-field lookup tables.
	for _, field := range n.tables.Fields() {
		pending = n.normalizeField(rec, field, pending, res)
	}

	// Layer 2: cross-column rule. An explicit HPP treatment with no stated
	// processing method implies the method.
	if rec.Equals(schema.ColHPPTreatment, "Yes") && rec.Blank(schema.ColProcessingMethod) {
		rec.Set(schema.ColProcessingMethod, "HPP")
		res.Resolutions = append(res.Resolutions, model.ResolutionRecord{
			SourceFile: rec.SourceFile,
			Row:        rec.Row,
			Field:      schema.ColProcessingMethod,
			Resolved:   "HPP",
			Source:     model.SourceRule,
			Rationale:  "cross-column rule (HPP Treatment = Yes)",
		})
	}

	// Layer 3: extraction-method cascade.
	pending = n.inferExtractionMethod(rec, pending, res)

	// Layer 4: brand authority. On a match both coupled fields are owned by
	// the authority, so their pending flags are withdrawn.
	if resolution, ok := n.brands.Resolve(rec, market); ok {
		res.Resolutions = append(res.Resolutions, resolution.Resolutions(rec)...)
		res.Conflicts = append(res.Conflicts, resolution.Conflicts...)
		pending = dropFields(pending, schema.ColExtractionMethod, schema.ColProcessingMethod)
	}

	// Layer 5: flavor extraction. A product name with no flavor is worth an
	// inference request.
	if !rec.Blank(schema.ColProductName) && rec.Blank(schema.ColFlavor) {
		pending = append(pending, n.flagged(rec, schema.ColFlavor, ""))
	}

	res.Flagged = append(res.Flagged, pending...)
}

// normalizeField applies one field's lookup table to one record.
func (n *Normalizer) normalizeField(rec *model.Record, field string, pending []model.FlaggedItem, res *Result) []model.FlaggedItem {
	raw := rec.Get(field)
	if raw == "" {
		// Blank cells are left alone: blank means "we don't know", never a
		// value to be defaulted.
		return pending
	}

	table := n.tables.Field(field)
	canonical, found := table.Lookup(raw)
	if found {
		if canonical == "" {
			rec.Clear(field)
			res.Resolutions = append(res.Resolutions, model.ResolutionRecord{
				SourceFile: rec.SourceFile,
				Row:        rec.Row,
				Field:      field,
				Original:   raw,
				Source:     model.SourceRule,
				Rationale:  "lookup table folds value to blank",
			})
			return pending
		}
		rec.Set(field, canonical)
		if raw != canonical {
			res.Resolutions = append(res.Resolutions, model.ResolutionRecord{
				SourceFile: rec.SourceFile,
				Row:        rec.Row,
				Field:      field,
				Original:   raw,
				Resolved:   canonical,
				Source:     model.SourceRule,
				Rationale:  "lookup table",
			})
		}
		return pending
	}

	// Not in the table but already canonical: nothing to do.
	if n.schema.Constrained(field) && n.schema.IsValid(field, raw) {
		return pending
	}

	return append(pending, n.flagged(rec, field, raw))
}

// inferExtractionMethod runs the extraction cascade for records whose
// extraction method is blank, and flags non-blank values that are outside
// the valid set.
func (n *Normalizer) inferExtractionMethod(rec *model.Record, pending []model.FlaggedItem, res *Result) []model.FlaggedItem {
	current := rec.Get(schema.ColExtractionMethod)
	if current != "" {
		if n.schema.IsValid(schema.ColExtractionMethod, current) {
			return pending
		}
		return append(pending, n.flagged(rec, schema.ColExtractionMethod, current))
	}

	value, rule, ok := ApplyCascade(rec, n.extractionRules)
	if !ok {
		return append(pending, n.flagged(rec, schema.ColExtractionMethod, ""))
	}

	rec.Set(schema.ColExtractionMethod, value)
	res.Resolutions = append(res.Resolutions, model.ResolutionRecord{
		SourceFile: rec.SourceFile,
		Row:        rec.Row,
		Field:      schema.ColExtractionMethod,
		Resolved:   value,
		Source:     model.SourceRule,
		Rationale:  "deterministic rule (" + rule + ")",
	})
	return pending
}

// flagged builds a FlaggedItem with row context and the target field's
// declared valid-value set.
func (n *Normalizer) flagged(rec *model.Record, field, original string) model.FlaggedItem {
	context := make(map[string]string)
	for _, col := range contextColumns {
		if v := rec.Get(col); v != "" {
			context[col] = v
		}
	}

	return model.FlaggedItem{
		SourceFile:  rec.SourceFile,
		Row:         rec.Row,
		Field:       field,
		Original:    original,
		Context:     context,
		ValidValues: n.schema.ValidValues(field),
		FreeForm:    n.schema.FreeForm(field),
	}
}

// dropFields removes pending flags for the named fields.
func dropFields(items []model.FlaggedItem, fields ...string) []model.FlaggedItem {
	drop := make(map[string]bool, len(fields))
	for _, f := range fields {
		drop[f] = true
	}
	out := items[:0]
	for _, it := range items {
		if !drop[it.Field] {
			out = append(out, it)
		}
	}
	return out
}
