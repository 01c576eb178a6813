package brand

import (
	"strings"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// detectExtractionConflict checks the authority's extraction method against
// explicit indicators on the row. Returns nil when nothing contradicts it.
// The checks mirror the deterministic extraction cascade so the two layers
// can never disagree silently.
func detectExtractionConflict(rec *model.Record, brandName, brandValue string, score int) *model.ConflictFlag {
	text := strings.ToLower(rec.Get(schema.ColClaims) + " " + rec.Get(schema.ColNotes))
	proc := rec.Get(schema.ColProcessingMethod)

	flag := func(evidence, evidenceSource string) *model.ConflictFlag {
		return &model.ConflictFlag{
			SourceFile:     rec.SourceFile,
			Row:            rec.Row,
			Field:          schema.ColExtractionMethod,
			Brand:          brandName,
			AuthorityValue: brandValue,
			EvidenceValue:  evidence,
			EvidenceSource: evidenceSource,
			MatchScore:     score,
		}
	}

	switch {
	case rec.Equals(schema.ColHPPTreatment, "Yes") && brandValue != "Cold Pressed":
		return flag("Cold Pressed", "HPP Treatment = Yes")
	case proc == "HPP" && brandValue != "Cold Pressed":
		return flag("Cold Pressed", "Processing Method = HPP")
	case strings.EqualFold(proc, "Freshly Squeezed") && brandValue != "Squeezed":
		return flag("Squeezed", "Processing Method = Freshly Squeezed")
	case strings.Contains(text, "not from concentrate") && brandValue != "Squeezed":
		return flag("Squeezed", "Claims/Notes: 'not from concentrate'")
	case strings.Contains(text, "from concentrate") && !strings.Contains(text, "not from concentrate") &&
		brandValue != "From Concentrate":
		return flag("From Concentrate", "Claims/Notes: 'from concentrate'")
	case (strings.Contains(text, "cold pressed") || strings.Contains(text, "cold-pressed")) &&
		brandValue != "Cold Pressed":
		return flag("Cold Pressed", "Claims/Notes: 'cold pressed'")
	case strings.Contains(text, "squeezed") && !strings.Contains(text, "from concentrate") &&
		brandValue != "Squeezed":
		return flag("Squeezed", "Claims/Notes: 'squeezed'")
	}
	return nil
}

// detectProcessingConflict checks the authority's processing method against
// explicit indicators on the row.
func detectProcessingConflict(rec *model.Record, brandName, brandValue string, score int) *model.ConflictFlag {
	text := strings.ToLower(rec.Get(schema.ColClaims) + " " + rec.Get(schema.ColNotes))
	proc := strings.ToLower(rec.Get(schema.ColProcessingMethod))

	flag := func(evidence, evidenceSource string) *model.ConflictFlag {
		return &model.ConflictFlag{
			SourceFile:     rec.SourceFile,
			Row:            rec.Row,
			Field:          schema.ColProcessingMethod,
			Brand:          brandName,
			AuthorityValue: brandValue,
			EvidenceValue:  evidence,
			EvidenceSource: evidenceSource,
			MatchScore:     score,
		}
	}

	switch {
	case rec.Equals(schema.ColHPPTreatment, "Yes") && brandValue != "HPP":
		return flag("HPP", "HPP Treatment = Yes")
	case rec.Equals(schema.ColHPPTreatment, "No") && brandValue == "HPP":
		return flag("Pasteurized", "HPP Treatment = No")
	case isHPPTerm(proc) && brandValue != "HPP":
		return flag("HPP", "Processing Method = "+rec.Get(schema.ColProcessingMethod))
	case isPasteurizedTerm(proc) && brandValue == "HPP":
		return flag("Pasteurized", "Processing Method = "+rec.Get(schema.ColProcessingMethod))
	case strings.Contains(text, "hpp") && brandValue != "HPP":
		return flag("HPP", "Claims/Notes: 'hpp'")
	case (strings.Contains(text, "pasteurized") || strings.Contains(text, "pasteurised")) &&
		brandValue == "HPP":
		return flag("Pasteurized", "Claims/Notes: 'pasteurized'")
	}
	return nil
}

func isHPPTerm(s string) bool {
	switch s {
	case "hpp", "hpp treated", "hpp treatment":
		return true
	}
	return false
}

func isPasteurizedTerm(s string) bool {
	switch s {
	case "pasteurized", "pasteurised", "flash pasteurized", "flash pasteurised", "gently pasteurized":
		return true
	}
	return false
}
