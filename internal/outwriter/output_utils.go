package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatters creates the float formatter shared by every output type.
func createFormatters(precision int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}

// view bundles the three renderings of one result.
type view struct {
	name  string
	data  any
	csv   func(io.Writer) error
	table func(io.Writer) error
}

// writeView dispatches a view based on the output format configured.
func writeView(v view, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, v.data)
		}, "Wrote JSON "+v.name); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, v.csv, "Wrote CSV "+v.name); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := writeWithFile(cfg.OutputFile, v.table, "Wrote "+v.name+" table"); err != nil {
			return fmt.Errorf("error writing %s table output: %w", v.name, err)
		}
	}
	return nil
}

// newTable creates a table with the layout shared by every view.
// Headers are upper-cased here because auto-format would split dates like 03-14.
func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	upper := make([]string, len(headers))
	for i, h := range headers {
		upper[i] = strings.ToUpper(h)
	}
	table := tablewriter.NewWriter(w)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Formatting.AutoFormat = tw.Off
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	table.Header(upper)
	return table
}

// renderTable fills and renders a table.
func renderTable(table *tablewriter.Table, data [][]string) error {
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeFooter prints the elapsed time line below a table.
func writeFooter(w io.Writer, what string, period schema.Period, duration time.Duration) {
	_, _ = fmt.Fprintf(w, "%s for the last %s completed in %v\n", what, period.Text(), duration.Round(time.Millisecond))
}

// comma renders an integer with thousands separators.
func comma(n int) string {
	return humanize.Comma(int64(n))
}

// signed renders an integer with an explicit sign and thousands separators.
func signed(n int) string {
	if n > 0 {
		return "+" + comma(n)
	}
	return comma(n)
}

// itoa renders an integer for CSV output.
func itoa(n int) string {
	return strconv.Itoa(n)
}

// colorize applies fn only when colors are enabled.
func colorize(cfg *contract.Config, text string, fn func() string) string {
	if !cfg.UseColors {
		return text
	}
	return fn()
}

// oneLine flattens text for a table cell.
func oneLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return schema.TruncateRunes(s, width)
}

// shortDate drops the year of a YYYY-MM-DD date.
func shortDate(date string) string {
	if len(date) == len("2006-01-02") {
		return date[5:]
	}
	return date
}
