package util

import (
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// DropColumns returns a copy of df without the named columns. It fails,
// leaving df untouched, if any of them is missing.
func DropColumns(df dataframe.DataFrame, cols []string) (dataframe.DataFrame, error) {
	log := getLogger()
	log.Info().Strs("columns", cols).Msg("Entered the DropColumns method of util")

	if df.Err != nil {
		return dataframe.DataFrame{}, wrap("DropColumns", "", KindColumn, df.Err)
	}

	cols = lo.Uniq(cols)
	if missing := lo.Without(cols, df.Names()...); len(missing) > 0 {
		return dataframe.DataFrame{}, wrap("DropColumns", "", KindColumn,
			errors.Errorf("columns not found: %s", strings.Join(missing, ", ")))
	}

	out := df.Drop(cols)
	if out.Err != nil {
		return dataframe.DataFrame{}, wrap("DropColumns", "", KindColumn, out.Err)
	}

	log.Info().Strs("columns", out.Names()).Msg("Exited the DropColumns method of util")
	return out, nil
}

// ReadTable loads a CSV file with a header row. Every column is read as
// strings, so values such as "00501", "1e3" or "NA" are written back by
// WriteTable exactly as they were read.
func ReadTable(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, wrap("ReadTable", path, KindIO, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, wrap("ReadTable", path, KindParse, df.Err)
	}
	return df, nil
}

// WriteTable writes df as CSV with a header row, creating parent
// directories as needed.
func WriteTable(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return wrap("WriteTable", path, KindSerialize, df.Err)
	}
	if err := ensureParentDir(path); err != nil {
		return wrap("WriteTable", path, KindIO, err)
	}
	err := writeAtomic(path, func(w io.Writer) error {
		return df.WriteCSV(w)
	})
	if err != nil {
		return wrap("WriteTable", path, KindIO, err)
	}
	return nil
}
