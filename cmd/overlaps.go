package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfsight/shelf-cli/internal/consolidate"
	"github.com/shelfsight/shelf-cli/internal/fetcher"
	"github.com/shelfsight/shelf-cli/internal/model"
)

var overlapsManifest string

var overlapsCmd = &cobra.Command{
	Use:   "overlaps",
	Short: "List store visits that exist in both the manifest sources and the master dataset",
	Long:  "Reads the manifest sources without processing them and reports which store visits would collide with the master, so --decision flags can be prepared for the process command.",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath := overlapsManifest
		if manifestPath == "" {
			manifestPath = cfg.Paths.Manifest
		}
		manifest, err := fetcher.LoadManifest(manifestPath)
		if err != nil {
			return err
		}

		var master []*model.Record
		if _, err := os.Stat(cfg.Paths.Master); err == nil {
			if master, err = fetcher.ReadMaster(cfg.Paths.Master); err != nil {
				return err
			}
		}

		var incoming []*model.Record
		for _, src := range manifest.Sources {
			if src.Path == "" {
				continue // remote sources need a fetch first
			}
			records, err := fetcher.ReadRecords(src.Path, src.DefaultsFor(src.Path))
			if err != nil {
				return err
			}
			incoming = append(incoming, records...)
		}

		overlaps := consolidate.DetectOverlaps(master, incoming)
		if len(overlaps) == 0 {
			fmt.Println("no overlapping store visits")
			return nil
		}

		for _, ov := range overlaps {
			fmt.Println(consolidate.FormatOverlap(ov))
		}
		fmt.Printf("\n%d overlap(s); pass --decision '<retailer|city|format>=replace|skip' to process\n", len(overlaps))
		return nil
	},
}

func init() {
	overlapsCmd.Flags().StringVar(&overlapsManifest, "manifest", "", "run manifest path (default from config)")
	rootCmd.AddCommand(overlapsCmd)
}
