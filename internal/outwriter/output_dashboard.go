package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// WriteDashboardResult outputs the dashboard. CSV is one row per shipped item.
func WriteDashboardResult(result schema.DashboardResult, cfg *contract.Config, duration time.Duration) error {
	return writeView(view{
		name: "dashboard",
		data: result,
		csv: func(w io.Writer) error {
			return writeDashboardCSV(w, result)
		},
		table: func(w io.Writer) error {
			return writeDashboardTable(w, result, cfg, duration)
		},
	}, cfg)
}

func writeDashboardCSV(w io.Writer, result schema.DashboardResult) error {
	header := []string{"product_id", "product_name", "total_commits", "total_additions", "total_deletions", "category", "description"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range result.Products {
			base := []string{p.ProductID, p.ProductName, itoa(p.TotalCommits), itoa(p.TotalAdditions), itoa(p.TotalDeletions)}
			if len(p.Items) == 0 {
				if err := cw.Write(append(base, "", "")); err != nil {
					return err
				}
				continue
			}
			for _, item := range p.Items {
				row := append(append([]string{}, base...), string(item.Category), item.Description)
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeDashboardTable(w io.Writer, result schema.DashboardResult, cfg *contract.Config, duration time.Duration) error {
	_, _ = fmt.Fprintf(w, "Commits: %s  Contributors: %s  Lines: %s / -%s  Active products: %d\n",
		comma(result.TotalCommits), comma(result.TotalContributors), signed(result.TotalAdditions),
		comma(result.TotalDeletions), result.ActiveProducts)
	if result.GeneratedAt != nil {
		_, _ = fmt.Fprintf(w, "Narratives generated at %s\n", result.GeneratedAt.Format(time.RFC3339))
	}

	width := GetMaxTablePathWidth(cfg, 40)
	table := newTable(w, "Product", "Commits", "Lines", "Category", "Shipped")
	var data [][]string
	for _, p := range result.Products {
		lines := fmt.Sprintf("%s/-%s", signed(p.TotalAdditions), comma(p.TotalDeletions))
		if len(p.Items) == 0 {
			data = append(data, []string{p.ProductName, comma(p.TotalCommits), lines, "", "No significant changes"})
			continue
		}
		for i, item := range p.Items {
			category := colorize(cfg, string(item.Category), func() string { return contract.GetColorCategory(item.Category) })
			row := []string{"", "", "", category, oneLine(item.Description, width)}
			if i == 0 {
				row[0], row[1], row[2] = p.ProductName, comma(p.TotalCommits), lines
			}
			data = append(data, row)
		}
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	writeFooter(w, "Dashboard", result.Period, duration)
	return nil
}
