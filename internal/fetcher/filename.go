package fetcher

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/match"
)

// knownRetailers maps filename spellings (lowercase) to canonical retailer
// names. Longest keys are tried first so "tesco express" beats "tesco".
var knownRetailers = map[string]string{
	"tesco_express":     "Tesco Express",
	"tesco express":     "Tesco Express",
	"marks_and_spencer": "M&S",
	"marks_spencer":     "M&S",
	"marks and spencer": "M&S",
	"aldi":              "Aldi",
	"lidl":              "Lidl",
	"m&s":               "M&S",
	"m_s":               "M&S",
	"ms":                "M&S",
	"sainsburys":        "Sainsbury's",
	"sainsbury":         "Sainsbury's",
	"sainsbury's":       "Sainsbury's",
	"tesco":             "Tesco",
	"waitrose":          "Waitrose",
}

// knownCities maps filename spellings to canonical city names.
var knownCities = map[string]string{
	"covent garden": "Covent Garden",
	"covent_garden": "Covent Garden",
	"fulham":        "Fulham",
	"balham":        "Balham",
	"pimlico":       "Pimlico",
	"vauxhall":      "Vauxhall",
	"strand":        "Strand",
	"oval":          "Oval",
}

// formatKeywords are matched by substring so concatenations like
// "LargeShelf" still hit. "express" is part of a retailer, not a format.
// The values are footprint hints, not canonical store formats; the
// normalization layer flags them for resolution against the schema's
// format set.
var formatKeywords = map[string]string{
	"small":  "Small",
	"medium": "Medium",
	"large":  "Large",
}

// suffixesToStrip are trailing filename decorations, stripped iteratively.
var suffixesToStrip = []string{
	"_shelf_analysis",
	"_juice_analysis",
	"_shelf",
	"_juice",
	"_analysis",
	"_checked",
	"_corrected",
	"_v2",
	"_v3",
	"__1_",
	"_-_",
}

var (
	extensionRe     = regexp.MustCompile(`(?i)\.xlsx?$`)
	copyIndicatorRe = regexp.MustCompile(`\s*\(\d+\)\s*$`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
)

// FileMeta is the store metadata derivable from a source filename.
type FileMeta struct {
	Retailer    string
	City        string
	StoreFormat string
	Confidence  int // 0-100
	RawFilename string
}

// ParseFilename extracts retailer, city, and store format from a workbook
// filename. Exact substring matches are tried first, longest key first;
// fuzzy matching is the fallback.
func ParseFilename(filename string) FileMeta {
	raw := filename
	cleaned := cleanFilename(filepath.Base(filename))

	retailer, remaining, retailerScore := matchRetailer(cleaned)
	city, cityScore := matchCity(remaining)
	format := matchFormat(remaining)

	meta := FileMeta{
		Retailer:    retailer,
		City:        city,
		StoreFormat: format,
		Confidence:  (retailerScore + cityScore) / 2,
		RawFilename: raw,
	}

	zap.L().Debug("fetcher: parsed filename",
		zap.String("filename", raw),
		zap.String("retailer", meta.Retailer),
		zap.String("city", meta.City),
		zap.String("store_format", meta.StoreFormat),
		zap.Int("confidence", meta.Confidence),
	)

	return meta
}

func cleanFilename(name string) string {
	name = extensionRe.ReplaceAllString(name, "")
	name = copyIndicatorRe.ReplaceAllString(name, "")
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " - ", " ")

	for changed := true; changed; {
		changed = false
		for _, suffix := range suffixesToStrip {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				changed = true
			}
		}
	}

	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(name, " "))
}

// matchRetailer finds a retailer in the cleaned name and returns the
// canonical name, the string with the match removed, and the match score.
func matchRetailer(cleaned string) (string, string, int) {
	for _, key := range keysLongestFirst(knownRetailers) {
		if strings.Contains(cleaned, key) {
			remaining := strings.TrimSpace(strings.Replace(cleaned, key, "", 1))
			return knownRetailers[key], remaining, 100
		}
	}

	canonicals := uniqueValues(knownRetailers)
	if result, ok := match.Best(cleaned, canonicals, match.DefaultThreshold); ok {
		return result.Candidate, cleaned, result.Score
	}
	return "", cleaned, 0
}

func matchCity(remaining string) (string, int) {
	for _, key := range keysLongestFirst(knownCities) {
		if strings.Contains(remaining, key) {
			return knownCities[key], 100
		}
	}

	for _, word := range strings.Fields(remaining) {
		if result, ok := match.Best(word, uniqueValues(knownCities), match.DefaultThreshold); ok {
			return result.Candidate, result.Score
		}
	}
	return "", 0
}

func matchFormat(remaining string) string {
	for key, canonical := range formatKeywords {
		if strings.Contains(remaining, key) {
			return canonical
		}
	}
	return ""
}

func keysLongestFirst(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func uniqueValues(m map[string]string) []string {
	seen := make(map[string]bool, len(m))
	var out []string
	for _, v := range m {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
