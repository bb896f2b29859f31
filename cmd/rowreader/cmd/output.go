package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ssargent/rowreader/pkg/api"
	"github.com/ssargent/rowreader/pkg/codec"
	"github.com/ssargent/rowreader/pkg/query"
	"github.com/ssargent/rowreader/pkg/storage"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatCSV:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (table, json or csv)", format)
	}
}

// outputSeries displays decoded rows
func outputSeries(w io.Writer, format string, series query.Series, layout codec.Layout) error {
	switch format {
	case formatJSON:
		return outputJSON(w, api.DecodeResponse{
			Variants: series.Variants,
			Layout:   layout,
			Rows:     codec.Records(series.Rows),
		})
	case formatCSV:
		return outputSeriesCSV(w, series)
	default:
		return outputSeriesTable(w, series, layout)
	}
}

// outputSeriesTable displays rows in table format
func outputSeriesTable(w io.Writer, series query.Series, layout codec.Layout) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := append([]string{"INDEX", "TIME"}, series.Variants...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range series.Rows {
		fields := make([]string, 0, 2+len(row.Values))
		fields = append(fields, strconv.Itoa(int(row.Index)), row.Time().Format(time.RFC3339))
		for _, v := range row.Values {
			fields = append(fields, formatValue(v))
		}
		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d rows (row width %d bytes, %d trailing bytes dropped)\n",
		len(series.Rows), layout.RowWidth, layout.DroppedBytes)
	return err
}

// outputSeriesCSV displays rows as CSV with an index column
func outputSeriesCSV(w io.Writer, series query.Series) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{"index"}, series.Variants...)); err != nil {
		return err
	}
	for _, row := range series.Rows {
		record := make([]string, 0, 1+len(row.Values))
		record = append(record, strconv.Itoa(int(row.Index)))
		for _, v := range row.Values {
			record = append(record, formatValue(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// outputMeta displays a single dataset
func outputMeta(w io.Writer, format string, meta *storage.DatasetMeta) error {
	if format == formatJSON {
		return outputJSON(w, meta)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", meta.ID)
	if meta.Name != "" {
		fmt.Fprintf(tw, "Name:\t%s\n", meta.Name)
	}
	fmt.Fprintf(tw, "Type:\t%s\n", meta.Type)
	fmt.Fprintf(tw, "Variants:\t%s\n", formatStringSlice(meta.Variants))
	if meta.Units != "" {
		fmt.Fprintf(tw, "Units:\t%s\n", meta.Units)
	}
	fmt.Fprintf(tw, "Rows:\t%d\n", meta.Layout.Rows)
	fmt.Fprintf(tw, "Size:\t%d bytes (%d stored, %s)\n", meta.Size, meta.StoredSize, meta.Compression)
	fmt.Fprintf(tw, "Created:\t%s\n", meta.CreatedAt.Format(time.RFC3339))
	return tw.Flush()
}

// outputMetas displays multiple datasets
func outputMetas(w io.Writer, format string, metas []storage.DatasetMeta) error {
	if format == formatJSON {
		return outputJSON(w, metas)
	}

	if len(metas) == 0 {
		_, err := fmt.Fprintln(w, "No datasets found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tVARIANTS\tROWS\tSIZE\tCREATED")
	for _, m := range metas {
		variants := formatStringSlice(m.Variants)
		if len(variants) > 40 {
			variants = variants[:37] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			m.ID, m.Name, m.Type, variants, m.Layout.Rows, m.Size, m.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatValue renders a value without losing precision
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatStringSlice formats a string slice for display
func formatStringSlice(slice []string) string {
	if len(slice) == 0 {
		return "-"
	}
	return strings.Join(slice, ", ")
}
