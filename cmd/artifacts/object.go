package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.lorenzomilicia.dev/visa-approval-prediction/internal/util"
)

var objectCmd = &cobra.Command{
	Use:   "object",
	Short: "Inspect serialized objects",
}

var objectInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print the stored type and size of a serialized object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, err := util.ObjectType(args[0])
		if err != nil {
			return err
		}
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "type: %s\n", typeName)
		fmt.Fprintf(out, "size: %d bytes\n", info.Size())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(objectCmd)
	objectCmd.AddCommand(objectInfoCmd)
}
