package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/internal/fetcher"
)

var fetchManifest string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download manifest sources from the FTP drop server",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifestPath := fetchManifest
		if manifestPath == "" {
			manifestPath = cfg.Paths.Manifest
		}
		manifest, err := fetcher.LoadManifest(manifestPath)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.Paths.WorkDir, 0o755); err != nil {
			return eris.Wrap(err, "fetch: create work dir")
		}

		f := fetcher.NewFTPFetcher(fetcher.FTPOptions{
			Timeout:  time.Duration(cfg.FTP.TimeoutSecs) * time.Second,
			User:     cfg.FTP.User,
			Password: cfg.FTP.Password,
		})

		fetched := 0
		for _, src := range manifest.Sources {
			if src.URL == "" {
				continue
			}
			local := filepath.Join(cfg.Paths.WorkDir, filepath.Base(src.URL))
			n, err := f.DownloadToFile(cmd.Context(), src.URL, local)
			if err != nil {
				return err
			}
			zap.L().Info("fetch: downloaded source",
				zap.String("url", src.URL),
				zap.String("path", local),
				zap.Int64("bytes", n),
			)
			fetched++
		}

		zap.L().Info("fetch: complete", zap.Int("files", fetched))
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchManifest, "manifest", "", "run manifest path (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
