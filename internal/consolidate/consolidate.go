// Package consolidate merges newly processed records into the master
// dataset. The unit of deduplication is a store visit, identified by the
// composite retailer/city/store-format key; overlapping visits are resolved
// by explicit per-key decisions rather than silent heuristics.
package consolidate

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

// Key identifies one store visit in the master dataset.
type Key struct {
	Retailer string
	City     string
	Format   string
}

// KeyOf derives the composite key from a record. Key fields compare
// case-insensitively so "tesco" and "Tesco" collapse to one visit.
func KeyOf(rec *model.Record) Key {
	return Key{
		Retailer: strings.ToLower(rec.Get(schema.ColRetailer)),
		City:     strings.ToLower(rec.Get(schema.ColCity)),
		Format:   strings.ToLower(rec.Get(schema.ColStoreFormat)),
	}
}

func (k Key) String() string {
	return k.Retailer + "|" + k.City + "|" + k.Format
}

// Decision says what to do with one overlapping store visit.
type Decision string

const (
	// Replace removes the master's rows for the key and takes the incoming
	// rows instead.
	Replace Decision = "replace"
	// Skip discards the incoming rows and keeps the master's.
	Skip Decision = "skip"
)

// Overlap describes one store visit present in both datasets.
type Overlap struct {
	Key          Key
	MasterRows   int
	IncomingRows int
}

// DetectOverlaps lists store visits present in both master and incoming, in
// order of first appearance in the incoming data.
func DetectOverlaps(master, incoming []*model.Record) []Overlap {
	masterCounts := make(map[Key]int)
	for _, rec := range master {
		masterCounts[KeyOf(rec)]++
	}

	var overlaps []Overlap
	seen := make(map[Key]int) // key → index into overlaps
	for _, rec := range incoming {
		k := KeyOf(rec)
		if masterCounts[k] == 0 {
			continue
		}
		if i, ok := seen[k]; ok {
			overlaps[i].IncomingRows++
			continue
		}
		seen[k] = len(overlaps)
		overlaps = append(overlaps, Overlap{
			Key:          k,
			MasterRows:   masterCounts[k],
			IncomingRows: 1,
		})
	}
	return overlaps
}

// Summary tallies one merge.
type Summary struct {
	Added    int // incoming rows for new store visits
	Replaced int // master rows removed by replace decisions
	Skipped  int // incoming rows discarded by skip decisions
}

// Merge combines incoming records into the master set. Every overlapping
// store visit needs a decision; a missing one is an error, never a guess.
// Surviving master rows keep their original order and come first, followed
// by accepted incoming rows in their original order.
func Merge(master, incoming []*model.Record, decisions map[string]Decision) ([]*model.Record, *Summary, error) {
	overlaps := DetectOverlaps(master, incoming)

	replaceKeys := make(map[Key]bool)
	skipKeys := make(map[Key]bool)
	for _, ov := range overlaps {
		d, ok := decisions[ov.Key.String()]
		if !ok {
			return nil, nil, eris.Errorf("consolidate: no decision for overlapping store visit %q (%d master rows, %d incoming rows)",
				ov.Key.String(), ov.MasterRows, ov.IncomingRows)
		}
		switch d {
		case Replace:
			replaceKeys[ov.Key] = true
		case Skip:
			skipKeys[ov.Key] = true
		default:
			return nil, nil, eris.Errorf("consolidate: unknown decision %q for store visit %q", d, ov.Key.String())
		}
	}

	sum := &Summary{}
	merged := make([]*model.Record, 0, len(master)+len(incoming))

	for _, rec := range master {
		if replaceKeys[KeyOf(rec)] {
			sum.Replaced++
			continue
		}
		merged = append(merged, rec)
	}

	for _, rec := range incoming {
		k := KeyOf(rec)
		if skipKeys[k] {
			sum.Skipped++
			continue
		}
		if !replaceKeys[k] {
			sum.Added++
		}
		rec.Master = true
		merged = append(merged, rec)
	}

	for k := range skipKeys {
		zap.L().Info("consolidate: skipped incoming store visit, master retained",
			zap.String("store_visit", k.String()))
	}
	for k := range replaceKeys {
		zap.L().Info("consolidate: replaced master store visit with incoming",
			zap.String("store_visit", k.String()))
	}

	return merged, sum, nil
}

// ParseDecisions converts "key=replace" strings (CLI form) into the
// decision map. Keys are lowercased to match KeyOf.
func ParseDecisions(pairs []string) (map[string]Decision, error) {
	out := make(map[string]Decision, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, eris.Errorf("consolidate: malformed decision %q, want retailer|city|format=replace|skip", p)
		}
		d := Decision(strings.ToLower(strings.TrimSpace(value)))
		if d != Replace && d != Skip {
			return nil, eris.Errorf("consolidate: unknown decision %q in %q", value, p)
		}
		out[strings.ToLower(strings.TrimSpace(key))] = d
	}
	return out, nil
}

// FormatOverlap renders an overlap for operator-facing output.
func FormatOverlap(ov Overlap) string {
	return fmt.Sprintf("%s: %d row(s) in master, %d incoming", ov.Key.String(), ov.MasterRows, ov.IncomingRows)
}
