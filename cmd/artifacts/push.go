package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.lorenzomilicia.dev/visa-approval-prediction/internal/artifacts"
)

var (
	pushInputDir string
	pushPrefix   string
	pushForce    bool
	pushDryRun   bool
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push an artifact directory to S3-compatible storage",
	Long: `Upload every file of an artifact directory to S3-compatible storage.

Bucket, region and endpoint come from the config file or VISA_S3_* variables.
Credentials are read from AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY.

Example:
  artifacts push -i artifact --prefix models/2024-06-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := pushInputDir
		if dir == "" {
			dir = cfg.Artifacts.Dir
		}
		prefix := pushPrefix
		if !cmd.Flags().Changed("prefix") {
			prefix = cfg.S3.Prefix
		}

		var store artifacts.Store
		if !pushDryRun {
			s3Store, err := artifacts.NewS3Store(cmd.Context(), artifacts.S3Config{
				Endpoint: cfg.S3.Endpoint,
				Region:   cfg.S3.Region,
				Bucket:   cfg.S3.Bucket,
				BaseURL:  cfg.S3.BaseURL,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			store = s3Store
		}

		res, err := artifacts.Push(cmd.Context(), store, dir, artifacts.PushOptions{
			Prefix: prefix,
			Force:  pushForce,
			DryRun: pushDryRun,
		})
		if err != nil {
			return err
		}

		log.Info().
			Int("uploaded", res.Uploaded).
			Int("skipped", res.Skipped).
			Int("failed", res.Failed).
			Bool("dryRun", pushDryRun).
			Msg("Push complete")

		if res.Failed > 0 {
			return fmt.Errorf("%d file(s) failed to upload", res.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVarP(&pushInputDir, "input", "i", "", "Artifact directory (defaults to artifacts.dir)")
	pushCmd.Flags().StringVar(&pushPrefix, "prefix", "", "Prefix to prepend to all keys (defaults to s3.prefix)")
	pushCmd.Flags().BoolVar(&pushForce, "force", false, "Upload even if the key already exists")
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Simulate the push without uploading")
}
