package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DataTableColumns is the column order of the exported data table
var DataTableColumns = []string{"Title", "Genre", "Release_Date", "Vote_Average", "Popularity"}

// WriteCSV writes the data table as CSV with a header row
func WriteCSV(w io.Writer, rows []TableRow) error {
	if len(rows) == 0 {
		// gota refuses a header-only frame, an empty table is just the header
		writer := csv.NewWriter(w)
		if err := writer.Write(DataTableColumns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		writer.Flush()
		return writer.Error()
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, DataTableColumns)
	for _, row := range rows {
		records = append(records, []string{
			row.Title,
			row.Genre,
			row.ReleaseDate,
			strconv.FormatFloat(row.VoteAverage, 'f', -1, 64),
			strconv.FormatFloat(row.Popularity, 'f', -1, 64),
		})
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return fmt.Errorf("failed to build data table: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("failed to write data table: %w", err)
	}
	return nil
}
