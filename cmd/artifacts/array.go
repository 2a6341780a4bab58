package main

import (
	"fmt"
	"reflect"

	"github.com/spf13/cobra"
	"go.lorenzomilicia.dev/visa-approval-prediction/internal/util"
)

var arrayPreview int

var arrayCmd = &cobra.Command{
	Use:   "array",
	Short: "Inspect .npy arrays",
}

var arrayInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print dtype, shape, ndim and the first elements of a .npy array",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arr, err := util.LoadArray(args[0])
		if err != nil {
			return err
		}

		n, err := arr.Len()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "dtype:    %s\n", arr.DType)
		fmt.Fprintf(out, "shape:    %v\n", arr.Shape)
		fmt.Fprintf(out, "ndim:     %d\n", arr.NDim())
		fmt.Fprintf(out, "elements: %d\n", n)
		if arr.FortranOrder {
			fmt.Fprintln(out, "order:    fortran")
		}
		if arrayPreview > 0 {
			fmt.Fprintf(out, "preview:  %s\n", preview(arr.Data, arrayPreview))
		}
		return nil
	},
}

func preview(data any, n int) string {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice || v.Len() <= n {
		return fmt.Sprint(data)
	}
	return fmt.Sprint(v.Slice(0, n).Interface()) + " ..."
}

func init() {
	rootCmd.AddCommand(arrayCmd)
	arrayCmd.AddCommand(arrayInfoCmd)

	arrayInfoCmd.Flags().IntVarP(&arrayPreview, "preview", "n", 10, "Number of elements to print (0 disables)")
}
