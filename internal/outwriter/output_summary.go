package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// WriteSummaryResult outputs the summary view. CSV carries the top contributors.
func WriteSummaryResult(result schema.SummaryResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatters(cfg.Precision)
	return writeView(view{
		name: "summary",
		data: result,
		csv: func(w io.Writer) error {
			return writeSummaryCSV(w, result)
		},
		table: func(w io.Writer) error {
			return writeSummaryTable(w, result, cfg, fmtFloat, duration)
		},
	}, cfg)
}

func writeSummaryCSV(w io.Writer, result schema.SummaryResult) error {
	header := []string{"author", "commits", "additions", "deletions", "files_changed"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range result.TopContributors {
			if err := cw.Write([]string{c.Author, itoa(c.Commits), itoa(c.Additions), itoa(c.Deletions), itoa(c.FilesChanged)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeSummaryTable(w io.Writer, result schema.SummaryResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	pulse := result.Pulse
	label := colorize(cfg, string(pulse.VelocityLabel), func() string { return contract.GetColorPulse(pulse.VelocityLabel) })

	_, _ = fmt.Fprintf(w, "Commits: %s  Contributors: %s  Lines: %s / -%s\n",
		comma(result.TotalCommits), comma(result.TotalContributors), signed(result.TotalAdditions), comma(result.TotalDeletions))
	_, _ = fmt.Fprintf(w, "Pulse: %s (%s%%)  Streak: %d days  Active: %d of %d days\n",
		label, fmtFloat(pulse.VelocityTrend), pulse.TeamStreakDays, pulse.ActiveDaysInPeriod, pulse.PeriodDays)

	q := result.CommitQuality
	_, _ = fmt.Fprintf(w, "Quality: %s%% conventional  avg %s LOC / %s files per commit  %d large of %d\n\n",
		fmtFloat(q.ConventionalCommitPct), comma(q.AvgCommitSizeLOC), fmtFloat(q.AvgFilesPerCommit), q.LargeCommits, q.TotalAnalyzed)

	if len(result.TopContributors) > 0 {
		table := newTable(w, "Author", "Commits", "Additions", "Deletions", "Files")
		var data [][]string
		for _, c := range result.TopContributors {
			data = append(data, []string{c.Author, comma(c.Commits), signed(c.Additions), comma(c.Deletions), comma(c.FilesChanged)})
		}
		if err := renderTable(table, data); err != nil {
			return err
		}
	}

	if len(result.CommitQuality.CommitTypes) > 0 {
		table := newTable(w, "Type", "Count", "Share")
		var data [][]string
		for _, t := range result.CommitQuality.CommitTypes {
			data = append(data, []string{t.Type, comma(t.Count), fmtFloat(t.Percentage) + "%"})
		}
		if err := renderTable(table, data); err != nil {
			return err
		}
	}

	if len(result.RecentCommits) > 0 {
		width := GetMaxTablePathWidth(cfg, 50)
		table := newTable(w, "SHA", "Author", "Repository", "Message", "Lines")
		var data [][]string
		for _, c := range result.RecentCommits {
			data = append(data, []string{
				schema.ShortSHA(c.SHA),
				c.Author,
				c.Repository,
				oneLine(c.Message, width),
				fmt.Sprintf("%s/-%s", signed(c.Additions), comma(c.Deletions)),
			})
		}
		if err := renderTable(table, data); err != nil {
			return err
		}
	}

	writeFooter(w, "Summary", result.Period, duration)
	return nil
}
