package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// maxBarWidth is the widest weekday bar in table output.
const maxBarWidth = 40

// WriteContributorsResult outputs the contributor detail view.
func WriteContributorsResult(result schema.ContributorsResult, cfg *contract.Config, duration time.Duration) error {
	return writeView(view{
		name: "contributors",
		data: result,
		csv: func(w io.Writer) error {
			return writeContributorsCSV(w, result)
		},
		table: func(w io.Writer) error {
			return writeContributorsTable(w, result, cfg, duration)
		},
	}, cfg)
}

func writeContributorsCSV(w io.Writer, result schema.ContributorsResult) error {
	header := []string{"author", "commits", "additions", "deletions", "files_changed", "last_active", "focus_areas"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range result.Contributors {
			row := []string{
				c.Author, itoa(c.Commits), itoa(c.Additions), itoa(c.Deletions), itoa(c.FilesChanged),
				c.LastActive, strings.Join(c.FocusAreas, "|"),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeContributorsTable(w io.Writer, result schema.ContributorsResult, cfg *contract.Config, duration time.Duration) error {
	table := newTable(w, "Author", "Commits", "Additions", "Deletions", "Files", "Last Active", "Focus")
	width := GetMaxTablePathWidth(cfg, 70)
	var data [][]string
	for _, c := range result.Contributors {
		data = append(data, []string{
			c.Author,
			comma(c.Commits),
			signed(c.Additions),
			comma(c.Deletions),
			comma(c.FilesChanged),
			c.LastActive,
			oneLine(strings.Join(c.FocusAreas, ", "), width),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	writeFooter(w, fmt.Sprintf("%d contributors sorted by %s", len(result.Contributors), result.SortedBy), result.Period, duration)
	return nil
}

// WriteHeatmapResult outputs the contributor by date grid. CSV is one row per cell.
func WriteHeatmapResult(result schema.HeatmapResult, cfg *contract.Config, duration time.Duration) error {
	return writeView(view{
		name: "heatmap",
		data: result,
		csv: func(w io.Writer) error {
			return writeHeatmapCSV(w, result)
		},
		table: func(w io.Writer) error {
			return writeHeatmapTable(w, result, duration)
		},
	}, cfg)
}

func writeHeatmapCSV(w io.Writer, result schema.HeatmapResult) error {
	return writeCSVWithHeader(w, []string{"author", "date", "commits"}, func(cw *csv.Writer) error {
		for _, row := range result.Rows {
			for _, cell := range row.Cells {
				if err := cw.Write([]string{row.Author, cell.Date, itoa(cell.Commits)}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeHeatmapTable(w io.Writer, result schema.HeatmapResult, duration time.Duration) error {
	headers := []string{"Author", "Total"}
	for _, d := range result.Dates {
		headers = append(headers, shortDate(d))
	}
	table := newTable(w, headers...)

	var data [][]string
	for _, row := range result.Rows {
		line := []string{row.Author, comma(row.Total)}
		for _, cell := range row.Cells {
			if cell.Commits == 0 {
				line = append(line, ".")
			} else {
				line = append(line, itoa(cell.Commits))
			}
		}
		data = append(data, line)
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	writeFooter(w, fmt.Sprintf("Heatmap (max %d per day)", result.MaxValue), result.Period, duration)
	return nil
}

// WriteDayOfWeekResult outputs the weekday distribution.
func WriteDayOfWeekResult(result schema.DayOfWeekResult, cfg *contract.Config, duration time.Duration) error {
	return writeView(view{
		name: "day-of-week",
		data: result,
		csv: func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"day", "commits"}, func(cw *csv.Writer) error {
				for _, d := range result.Days {
					if err := cw.Write([]string{d.Day, itoa(d.Commits)}); err != nil {
						return err
					}
				}
				return nil
			})
		},
		table: func(w io.Writer) error {
			return writeDayOfWeekTable(w, result, duration)
		},
	}, cfg)
}

func writeDayOfWeekTable(w io.Writer, result schema.DayOfWeekResult, duration time.Duration) error {
	peak := 0
	for _, d := range result.Days {
		peak = max(peak, d.Commits)
	}
	table := newTable(w, "Day", "Commits", "")
	var data [][]string
	for _, d := range result.Days {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("█", d.Commits*maxBarWidth/peak)
		}
		data = append(data, []string{d.Day, comma(d.Commits), bar})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	writeFooter(w, "Day of week ("+result.Timezone+")", result.Period, duration)
	return nil
}

// WriteLeaderboardResult outputs the ranked contributors.
func WriteLeaderboardResult(result schema.LeaderboardResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatters(cfg.Precision)
	return writeView(view{
		name: "leaderboard",
		data: result,
		csv: func(w io.Writer) error {
			return writeLeaderboardCSV(w, result, fmtFloat)
		},
		table: func(w io.Writer) error {
			return writeLeaderboardTable(w, result, fmtFloat, duration)
		},
	}, cfg)
}

func writeLeaderboardCSV(w io.Writer, result schema.LeaderboardResult, fmtFloat func(float64) string) error {
	header := []string{
		"rank", "author", "commits", "additions", "deletions", "net_loc", "files_changed",
		"repos_contributed_to", "active_days", "avg_commits_per_active_day",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, e := range result.Entries {
			row := []string{
				itoa(e.Rank), e.Author, itoa(e.Commits), itoa(e.Additions), itoa(e.Deletions), itoa(e.NetLOC),
				itoa(e.FilesChanged), itoa(e.ReposContributedTo), itoa(e.ActiveDays), fmtFloat(e.AvgCommitsPerActiveDay),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeLeaderboardTable(w io.Writer, result schema.LeaderboardResult, fmtFloat func(float64) string, duration time.Duration) error {
	table := newTable(w, "Rank", "Author", "Commits", "Additions", "Deletions", "Net", "Files", "Repos", "Days", "Per Day")
	var data [][]string
	for _, e := range result.Entries {
		data = append(data, []string{
			itoa(e.Rank),
			e.Author,
			comma(e.Commits),
			signed(e.Additions),
			comma(e.Deletions),
			signed(e.NetLOC),
			comma(e.FilesChanged),
			itoa(e.ReposContributedTo),
			fmt.Sprintf("%d/%d", e.ActiveDays, e.PeriodDays),
			fmtFloat(e.AvgCommitsPerActiveDay),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	writeFooter(w, fmt.Sprintf("Leaderboard of %d ranked by %s", result.TotalContributors, result.RankedBy), result.Period, duration)
	return nil
}
