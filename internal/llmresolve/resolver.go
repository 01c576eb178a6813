// Package llmresolve sends cells that survived every deterministic layer to
// an external language model, in bounded batches with split-and-retry on
// unparseable responses. Proposed values are validated against the schema
// before they touch a record; a model that answers badly can waste tokens
// but never corrupt the output.
package llmresolve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/normalize"
	"github.com/shelfsight/shelf-cli/internal/schema"
)

const (
	// DefaultMaxBatch caps items per inference call.
	DefaultMaxBatch = 50
	// DefaultMinBatch is the split floor: a batch at or below this size that
	// still fails is terminal and its items stay unresolved.
	DefaultMinBatch = 10
	// DefaultConcurrency bounds in-flight inference calls.
	DefaultConcurrency = 4
)

// Decision is the outcome for one flagged item. OK false means the item
// stays unresolved; Rationale says why either way.
type Decision struct {
	Item      model.FlaggedItem
	Value     string
	OK        bool
	Rationale string
}

// Resolver batches flagged items through an Inferer. A nil Inferer puts the
// resolver in degraded mode: every item is marked unresolved instead of the
// run failing.
type Resolver struct {
	inferer     Inferer
	tables      *normalize.Tables
	schema      *schema.Schema
	maxBatch    int
	minBatch    int
	concurrency int
}

// NewResolver builds a Resolver. Zero limits fall back to the defaults.
func NewResolver(inferer Inferer, tables *normalize.Tables, sch *schema.Schema, maxBatch, minBatch, concurrency int) *Resolver {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	if minBatch <= 0 {
		minBatch = DefaultMinBatch
	}
	if minBatch > maxBatch {
		minBatch = maxBatch
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Resolver{
		inferer:     inferer,
		tables:      tables,
		schema:      sch,
		maxBatch:    maxBatch,
		minBatch:    minBatch,
		concurrency: concurrency,
	}
}

// Resolve processes the flag queue and returns one Decision per item, in
// input order. The only error returned is context cancellation; inference
// failures degrade to unresolved decisions instead.
func (r *Resolver) Resolve(ctx context.Context, items []model.FlaggedItem) ([]Decision, error) {
	decisions := make([]Decision, len(items))

	if len(items) == 0 {
		return decisions, nil
	}

	if r.inferer == nil {
		zap.L().Warn("llmresolve: no inference backend configured, leaving flagged cells unresolved",
			zap.Int("items", len(items)))
		for i, it := range items {
			decisions[i] = unresolved(it, "external resolution disabled")
		}
		return decisions, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	// Top-level batches write into disjoint ranges of the shared slice, so
	// input order survives concurrent completion.
	for start := 0; start < len(items); start += r.maxBatch {
		end := min(start+r.maxBatch, len(items))
		batch := items[start:end]
		out := decisions[start:end]

		g.Go(func() error {
			return r.resolveBatch(ctx, batch, out)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved := 0
	for _, d := range decisions {
		if d.OK {
			resolved++
		}
	}
	zap.L().Info("llmresolve: queue complete",
		zap.Int("items", len(items)),
		zap.Int("resolved", resolved),
		zap.Int("unresolved", len(items)-resolved),
	)

	return decisions, nil
}

// resolveBatch attempts one inference call for a batch, splitting in half
// and retrying on failure until the batch is at the floor size.
func (r *Resolver) resolveBatch(ctx context.Context, batch []model.FlaggedItem, out []Decision) error {
	values, err := r.inferer.Infer(ctx, batch)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if len(batch) <= r.minBatch {
			zap.L().Warn("llmresolve: batch failed at floor size, marking unresolved",
				zap.Int("size", len(batch)),
				zap.Error(err))
			for i, it := range batch {
				out[i] = unresolved(it, "inference failed: "+err.Error())
			}
			return nil
		}

		mid := len(batch) / 2
		zap.L().Debug("llmresolve: batch failed, splitting",
			zap.Int("size", len(batch)),
			zap.Int("halves", 2),
			zap.Error(err))
		if err := r.resolveBatch(ctx, batch[:mid], out[:mid]); err != nil {
			return err
		}
		return r.resolveBatch(ctx, batch[mid:], out[mid:])
	}

	for i, it := range batch {
		proposed, ok := values[i]
		if !ok {
			out[i] = unresolved(it, "no decision returned for item")
			continue
		}
		out[i] = r.validate(it, proposed)
	}
	return nil
}

// sentinels are model answers that mean "I don't know" and fold to blank.
var sentinels = map[string]bool{
	"unknown": true,
	"unkown":  true,
	"n/a":     true,
	"na":      true,
	"none":    true,
}

// validate turns a proposal into a Decision, enforcing the schema. The
// model's stated rationale is carried into the audit trail; the fallbacks
// cover responses that omit it.
func (r *Resolver) validate(item model.FlaggedItem, proposed Proposal) Decision {
	value := strings.TrimSpace(proposed.Value)
	rationale := strings.TrimSpace(proposed.Rationale)
	if sentinels[strings.ToLower(value)] {
		value = ""
	}

	if value == "" {
		if rationale == "" {
			rationale = "model reported undeterminable"
		}
		return Decision{Item: item, OK: true, Rationale: rationale}
	}

	if r.schema.FreeForm(item.Field) {
		if item.Field == schema.ColFlavor {
			value = r.tables.NormalizeFlavor(value)
		}
		if rationale == "" {
			rationale = "model extraction"
		}
		return Decision{Item: item, Value: value, OK: true, Rationale: rationale}
	}

	if !r.schema.IsValid(item.Field, value) {
		return unresolved(item, fmt.Sprintf("proposed value %q outside valid set", value))
	}

	if rationale == "" {
		rationale = "model selection"
	}
	return Decision{Item: item, Value: value, OK: true, Rationale: rationale}
}

func unresolved(item model.FlaggedItem, rationale string) Decision {
	return Decision{Item: item, Rationale: rationale}
}

type recordKey struct {
	file string
	row  int
}

// Apply writes accepted decisions back onto their records and returns the
// audit entries for every decision, applied or not.
func Apply(decisions []Decision, records []*model.Record) []model.ResolutionRecord {
	index := make(map[recordKey]*model.Record, len(records))
	for _, rec := range records {
		index[recordKey{rec.SourceFile, rec.Row}] = rec
	}

	audits := make([]model.ResolutionRecord, 0, len(decisions))
	for _, d := range decisions {
		audit := model.ResolutionRecord{
			SourceFile: d.Item.SourceFile,
			Row:        d.Item.Row,
			Field:      d.Item.Field,
			Original:   d.Item.Original,
			Resolved:   d.Value,
			Source:     model.SourceExternal,
			Rationale:  d.Rationale,
		}
		if !d.OK {
			audit.Source = model.SourceUnresolved
			audit.Resolved = ""
			audits = append(audits, audit)
			continue
		}

		rec, ok := index[recordKey{d.Item.SourceFile, d.Item.Row}]
		if !ok {
			zap.L().Warn("llmresolve: decision for unknown record",
				zap.String("source_file", d.Item.SourceFile),
				zap.Int("row", d.Item.Row))
			continue
		}

		if d.Value == "" {
			rec.Clear(d.Item.Field)
		} else {
			rec.Set(d.Item.Field, d.Value)
		}
		audits = append(audits, audit)
	}
	return audits
}
