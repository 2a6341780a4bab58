package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.lorenzomilicia.dev/visa-approval-prediction/internal/util"
)

var (
	tableInput   string
	tableOutput  string
	tableColumns []string
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Work with CSV tables",
}

var tableDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop columns from a CSV table",
	Long: `Drop the named columns from a CSV table and write the result.
Fails without writing anything if a column does not exist.

Example:
  artifacts table drop -i artifact/train.csv -o artifact/train_clean.csv -c case_id,yr_of_estab`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cols := lo.Compact(lo.Map(tableColumns, func(c string, _ int) string {
			return strings.TrimSpace(c)
		}))
		if len(cols) == 0 {
			return fmt.Errorf("no columns given (-c)")
		}

		df, err := util.ReadTable(tableInput)
		if err != nil {
			return err
		}
		out, err := util.DropColumns(df, cols)
		if err != nil {
			return err
		}
		if err := util.WriteTable(tableOutput, out); err != nil {
			return err
		}

		log.Info().
			Str("input", tableInput).
			Str("output", tableOutput).
			Int("rows", out.Nrow()).
			Strs("columns", out.Names()).
			Msg("Columns dropped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.AddCommand(tableDropCmd)

	tableDropCmd.Flags().StringVarP(&tableInput, "input", "i", "", "Input CSV file (required)")
	tableDropCmd.Flags().StringVarP(&tableOutput, "output", "o", "", "Output CSV file (required)")
	tableDropCmd.Flags().StringSliceVarP(&tableColumns, "columns", "c", nil, "Columns to drop (comma separated)")

	tableDropCmd.MarkFlagRequired("input")
	tableDropCmd.MarkFlagRequired("output")
}
