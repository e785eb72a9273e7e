package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// WriteCSV writes the long-format trajectory table for downstream plotting
// and statistics. Fixed condition columns come first, then any meta
// columns (union over rows, sorted), then the trajectory columns.
func WriteCSV(res *SweepResult, w io.Writer) error {
	metaCols := metaColumns(res.Rows)

	header := []string{
		"cell_type", "total_target", "total_enzyme", "efficiency", "synthesis",
		"k_on_scale", "k_off_scale", "k_cat_scale",
	}
	header = append(header, metaCols...)
	header = append(header, "time", "species", "concentration", "time_in_hours", "initial_target")

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, 0, len(header))
	for i := range res.Rows {
		r := &res.Rows[i]
		record = record[:0]
		record = append(record,
			r.CellType,
			formatFloat(r.TotalTarget),
			formatFloat(r.TotalEnzyme),
			formatFloat(r.Efficiency),
			formatFloat(r.Synthesis),
			formatFloat(r.KOnScale),
			formatFloat(r.KOffScale),
			formatFloat(r.KCatScale),
		)
		for _, col := range metaCols {
			if v, ok := r.Meta[col]; ok {
				record = append(record, formatFloat(v))
			} else {
				record = append(record, "")
			}
		}
		record = append(record,
			formatFloat(r.Time),
			r.Species,
			formatFloat(r.Concentration),
			formatFloat(r.TimeInHours),
			formatFloat(r.InitialTarget),
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the trajectory table to the named file.
func WriteCSVFile(res *SweepResult, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := WriteCSV(res, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func metaColumns(rows []Row) []string {
	seen := make(map[string]struct{})
	for i := range rows {
		for k := range rows[i].Meta {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
