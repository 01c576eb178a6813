package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shelfsight/shelf-cli/internal/brand"
	"github.com/shelfsight/shelf-cli/internal/consolidate"
	"github.com/shelfsight/shelf-cli/internal/convert"
	"github.com/shelfsight/shelf-cli/internal/fetcher"
	"github.com/shelfsight/shelf-cli/internal/llmresolve"
	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/internal/normalize"
	"github.com/shelfsight/shelf-cli/internal/report"
	"github.com/shelfsight/shelf-cli/internal/schema"
	"github.com/shelfsight/shelf-cli/pkg/anthropic"
)

var (
	processManifest  string
	processMaster    string
	processOut       string
	processReport    string
	processDecisions []string
	processNoLLM     bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process source workbooks and merge them into the master dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context())
	},
}

func init() {
	processCmd.Flags().StringVar(&processManifest, "manifest", "", "run manifest path (default from config)")
	processCmd.Flags().StringVar(&processMaster, "master", "", "existing master workbook (default from config)")
	processCmd.Flags().StringVar(&processOut, "out", "", "output master workbook (defaults to --master)")
	processCmd.Flags().StringVar(&processReport, "report", "", "quality report output path (default from config)")
	processCmd.Flags().StringArrayVar(&processDecisions, "decision", nil,
		"overlap decision as retailer|city|format=replace|skip (repeatable)")
	processCmd.Flags().BoolVar(&processNoLLM, "no-llm", false, "skip external resolution, leave flagged cells unresolved")
	rootCmd.AddCommand(processCmd)
}

// tableSet is the loaded configuration objects shared by the run.
type tableSet struct {
	schema *schema.Schema
	tables *normalize.Tables
	brands *brand.Set
}

func loadTableSet() (*tableSet, error) {
	ts := &tableSet{
		schema: schema.Default(),
		tables: normalize.DefaultTables(),
		brands: brand.DefaultSet(),
	}

	var err error
	if p := cfg.Paths.Schema; p != "" {
		if ts.schema, err = schema.Load(p); err != nil {
			return nil, err
		}
	}
	if p := cfg.Paths.Tables; p != "" {
		if ts.tables, err = normalize.LoadTables(p); err != nil {
			return nil, err
		}
	}
	if p := cfg.Paths.Brands; p != "" {
		if ts.brands, err = brand.Load(p); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

// fileResult is one source workbook after the deterministic layers.
type fileResult struct {
	records []*model.Record
	norm    *normalize.Result
}

func runProcess(ctx context.Context) error {
	runID := uuid.NewString()
	zap.L().Info("process: starting run", zap.String("run_id", runID))

	ts, err := loadTableSet()
	if err != nil {
		return err
	}

	manifestPath := processManifest
	if manifestPath == "" {
		manifestPath = cfg.Paths.Manifest
	}
	manifest, err := fetcher.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	results, err := processSources(ctx, manifest, ts)
	if err != nil {
		return err
	}

	var incoming []*model.Record
	var flagged []model.FlaggedItem
	var resolutions []model.ResolutionRecord
	var conflicts []model.ConflictFlag
	for _, fr := range results {
		incoming = append(incoming, fr.records...)
		flagged = append(flagged, fr.norm.Flagged...)
		resolutions = append(resolutions, fr.norm.Resolutions...)
		conflicts = append(conflicts, fr.norm.Conflicts...)
	}

	// External resolution of everything the deterministic layers left open.
	inferer := buildInferer(ts)
	resolver := llmresolve.NewResolver(inferer, ts.tables, ts.schema,
		cfg.Anthropic.MaxBatchSize, cfg.Anthropic.MinBatchSize, cfg.Anthropic.MaxConcurrentBatches)

	decisions, err := resolver.Resolve(ctx, flagged)
	if err != nil {
		return err
	}
	resolutions = append(resolutions, llmresolve.Apply(decisions, incoming)...)

	// Typed-value pass and derived columns.
	issues := convert.Numerics(incoming)
	rates := convert.DefaultRates()
	for cur, r := range cfg.Pricing.ExchangeRates {
		rates[cur] = r
	}
	issues = append(issues, convert.Prices(incoming, rates)...)

	// Merge into the master set.
	masterPath := processMaster
	if masterPath == "" {
		masterPath = cfg.Paths.Master
	}
	var master []*model.Record
	if _, statErr := os.Stat(masterPath); statErr == nil {
		if master, err = fetcher.ReadMaster(masterPath); err != nil {
			return err
		}
	}

	overlapDecisions, err := consolidate.ParseDecisions(processDecisions)
	if err != nil {
		return err
	}

	merged, summary, err := consolidate.Merge(master, incoming, overlapDecisions)
	if err != nil {
		overlaps := consolidate.DetectOverlaps(master, incoming)
		var sb strings.Builder
		for _, ov := range overlaps {
			fmt.Fprintf(&sb, "  %s\n", consolidate.FormatOverlap(ov))
		}
		return eris.Wrap(err, "process: overlapping store visits need --decision flags:\n"+sb.String())
	}

	outPath := processOut
	if outPath == "" {
		outPath = masterPath
	}
	if err := fetcher.WriteMaster(outPath, merged); err != nil {
		return err
	}

	rep := report.Build(merged, report.Inputs{
		RunID:            runID,
		Schema:           ts.schema,
		Resolutions:      resolutions,
		Conflicts:        conflicts,
		ConversionIssues: issues,
		ExchangeRates:    rates,
		Degraded:         inferer == nil,
	})
	reportPath := processReport
	if reportPath == "" {
		reportPath = cfg.Paths.Report
	}
	if err := writeReport(reportPath, rep); err != nil {
		return err
	}

	zap.L().Info("process: run complete",
		zap.String("run_id", runID),
		zap.Int("rows", len(merged)),
		zap.Int("added", summary.Added),
		zap.Int("replaced", summary.Replaced),
		zap.Int("skipped", summary.Skipped),
		zap.Bool("clean", rep.Clean),
	)
	return nil
}

// processSources reads and normalizes every manifest source concurrently.
// Results keep manifest order regardless of completion order.
func processSources(ctx context.Context, manifest *fetcher.Manifest, ts *tableSet) ([]fileResult, error) {
	ftpFetcher := fetcher.NewFTPFetcher(fetcher.FTPOptions{
		Timeout:  time.Duration(cfg.FTP.TimeoutSecs) * time.Second,
		User:     cfg.FTP.User,
		Password: cfg.FTP.Password,
	})
	normalizer := normalize.New(ts.tables, ts.schema, ts.brands)

	results := make([]fileResult, len(manifest.Sources))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, src := range manifest.Sources {
		g.Go(func() error {
			path := src.Path
			if src.URL != "" {
				local := filepath.Join(cfg.Paths.WorkDir, filepath.Base(src.URL))
				if _, err := ftpFetcher.DownloadToFile(ctx, src.URL, local); err != nil {
					return err
				}
				path = local
			}

			records, err := fetcher.ReadRecords(path, src.DefaultsFor(path))
			if err != nil {
				return err
			}

			market := src.Market
			if market == "" {
				market = brand.DefaultMarket
			}
			norm := normalizer.File(records, market)

			mu.Lock()
			results[i] = fileResult{records: records, norm: norm}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// buildInferer wires the Anthropic backend, or returns nil for degraded
// mode when no key is configured or --no-llm was passed.
func buildInferer(ts *tableSet) llmresolve.Inferer {
	if processNoLLM || cfg.Anthropic.Key == "" {
		return nil
	}

	client := anthropic.NewClient(cfg.Anthropic.Key)
	limiter := rate.NewLimiter(rate.Limit(cfg.Anthropic.RequestsPerSecond), 1)
	return llmresolve.NewMessageInferer(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens,
		limiter, llmresolve.SystemPrompt(ts.schema))
}

func writeReport(path string, rep *report.Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return eris.Wrap(err, "process: marshal report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "process: write report")
	}
	return nil
}
