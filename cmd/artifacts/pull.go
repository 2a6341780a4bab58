package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.lorenzomilicia.dev/visa-approval-prediction/internal/artifacts"
)

var (
	pullOutputDir string
	pullPrefix    string
)

var pullCmd = &cobra.Command{
	Use:   "pull <key>...",
	Short: "Download artifacts from S3-compatible storage",
	Long: `Download the given keys into the artifact directory. The prefix is
stripped from each key to get the local path, so a pushed directory can be
restored in place.

Example:
  artifacts pull artifacts/model_trainer/model.obj artifacts/data_validation/drift_report/report.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := pullOutputDir
		if dir == "" {
			dir = cfg.Artifacts.Dir
		}
		prefix := pullPrefix
		if !cmd.Flags().Changed("prefix") {
			prefix = cfg.S3.Prefix
		}

		store, err := artifacts.NewS3Store(cmd.Context(), artifacts.S3Config{
			Endpoint: cfg.S3.Endpoint,
			Region:   cfg.S3.Region,
			Bucket:   cfg.S3.Bucket,
			BaseURL:  cfg.S3.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}

		res, err := artifacts.Pull(cmd.Context(), store, args, dir, prefix)
		if err != nil {
			return err
		}

		log.Info().
			Int("downloaded", res.Downloaded).
			Int("failed", res.Failed).
			Str("dir", dir).
			Msg("Pull complete")

		if res.Failed > 0 {
			return fmt.Errorf("%d key(s) failed to download", res.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)

	pullCmd.Flags().StringVarP(&pullOutputDir, "output", "o", "", "Directory to download into (defaults to artifacts.dir)")
	pullCmd.Flags().StringVar(&pullPrefix, "prefix", "", "Prefix to strip from keys (defaults to s3.prefix)")
}
