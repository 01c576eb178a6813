package brand

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// Resolution records one authority application: the matched brand, the
// values written, the values they displaced, and any conflicts with other
// row evidence.
type Resolution struct {
	Brand string
	Score int

	ExtractionMethod string
	ProcessingMethod string

	// PriorExtraction / PriorProcessing are the cell values the authority
	// overwrote (blank if the cells were empty). Captured so the override
	// is auditable rather than a silent overwrite.
	PriorExtraction string
	PriorProcessing string

	Conflicts []model.ConflictFlag
}

// Resolutions converts the application into audit entries for both coupled
// fields.
func (r *Resolution) Resolutions(rec *model.Record) []model.ResolutionRecord {
	rationale := fmt.Sprintf("brand %q matched at %d%%", r.Brand, r.Score)
	return []model.ResolutionRecord{
		{
			SourceFile: rec.SourceFile,
			Row:        rec.Row,
			Field:      schema.ColExtractionMethod,
			Original:   r.PriorExtraction,
			Resolved:   r.ExtractionMethod,
			Source:     model.SourceAuthority,
			Rationale:  rationale,
		},
		{
			SourceFile: rec.SourceFile,
			Row:        rec.Row,
			Field:      schema.ColProcessingMethod,
			Original:   r.PriorProcessing,
			Resolved:   r.ProcessingMethod,
			Source:     model.SourceAuthority,
			Rationale:  rationale,
		},
	}
}

// Resolve attempts the authority lookup for a record and, on a match,
// commits both brand-linked fields unconditionally. Conflict detection runs
// against the record state BEFORE the override so that evidence is compared
// against what was independently derivable. No match leaves the record
// untouched.
func (s *Set) Resolve(rec *model.Record, market string) (*Resolution, bool) {
	mapping, score, ok := s.Match(rec.Get(schema.ColBrand), market)
	if !ok {
		return nil, false
	}

	res := &Resolution{
		Brand:            mapping.Brand,
		Score:            score,
		ExtractionMethod: mapping.ExtractionMethod,
		ProcessingMethod: mapping.ProcessingMethod,
		PriorExtraction:  rec.Get(schema.ColExtractionMethod),
		PriorProcessing:  rec.Get(schema.ColProcessingMethod),
	}

	if c := detectExtractionConflict(rec, mapping.Brand, mapping.ExtractionMethod, score); c != nil {
		res.Conflicts = append(res.Conflicts, *c)
	}
	if c := detectProcessingConflict(rec, mapping.Brand, mapping.ProcessingMethod, score); c != nil {
		res.Conflicts = append(res.Conflicts, *c)
	}

	rec.Set(schema.ColExtractionMethod, mapping.ExtractionMethod)
	rec.Set(schema.ColProcessingMethod, mapping.ProcessingMethod)

	if len(res.Conflicts) > 0 {
		for _, c := range res.Conflicts {
			zap.L().Warn("brand: authority value conflicts with row evidence",
				zap.String("source_file", c.SourceFile),
				zap.Int("row", c.Row),
				zap.String("field", c.Field),
				zap.String("brand", c.Brand),
				zap.String("authority_value", c.AuthorityValue),
				zap.String("evidence", c.EvidenceSource),
			)
		}
	}

	return res, true
}
