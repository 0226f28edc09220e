package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// WriteVelocityResult outputs the velocity view. CSV carries the daily series.
func WriteVelocityResult(result schema.VelocityResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatters(cfg.Precision)
	return writeView(view{
		name: "velocity",
		data: result,
		csv: func(w io.Writer) error {
			return writeVelocityCSV(w, result)
		},
		table: func(w io.Writer) error {
			return writeVelocityTable(w, result, cfg, fmtFloat, duration)
		},
	}, cfg)
}

func writeVelocityCSV(w io.Writer, result schema.VelocityResult) error {
	header := []string{"date", "commits", "additions", "deletions", "contributors"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range result.CommitData {
			if err := cw.Write([]string{p.Date, itoa(p.Commits), itoa(p.Additions), itoa(p.Deletions), itoa(p.Contributors)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// percentChange renders the change from previous to current.
func percentChange(current, previous int, fmtFloat func(float64) string) string {
	if previous == 0 {
		if current == 0 {
			return "0%"
		}
		return "new"
	}
	change := float64(current-previous) / float64(previous) * 100
	if change > 0 {
		return "+" + fmtFloat(change) + "%"
	}
	return fmtFloat(change) + "%"
}

func writeVelocityTable(w io.Writer, result schema.VelocityResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	cur, prev := result.CurrentTotals, result.PreviousTotals
	totals := newTable(w, "Metric", "Current", "Previous", "Change")
	rows := []struct {
		name      string
		cur, prev int
	}{
		{"Commits", cur.Commits, prev.Commits},
		{"Additions", cur.Additions, prev.Additions},
		{"Deletions", cur.Deletions, prev.Deletions},
		{"Contributors", cur.Contributors, prev.Contributors},
		{"Files", cur.FilesChanged, prev.FilesChanged},
	}
	var data [][]string
	for _, r := range rows {
		data = append(data, []string{r.name, comma(r.cur), comma(r.prev), percentChange(r.cur, r.prev, fmtFloat)})
	}
	if err := renderTable(totals, data); err != nil {
		return err
	}

	for _, in := range result.Insights {
		_, _ = fmt.Fprintf(w, "• %s\n", in.Message)
	}

	if len(result.RepoComparison) > 0 {
		table := newTable(w, "Repository", "Commits", "Net", "Contrib", "Bus", "Churn", "Days", "Cadence")
		data = nil
		for _, r := range result.RepoComparison {
			cadence := colorize(cfg, string(r.Cadence), func() string { return contract.GetColorCadence(r.Cadence) })
			data = append(data, []string{
				r.RepositoryName,
				comma(r.Commits),
				signed(r.NetLOC),
				itoa(r.Contributors),
				itoa(r.BusFactor),
				fmtFloat(r.ChurnRatio),
				itoa(r.ActiveDays),
				cadence,
			})
		}
		if err := renderTable(table, data); err != nil {
			return err
		}
	}

	writeFooter(w, "Velocity", result.Period, duration)
	return nil
}
