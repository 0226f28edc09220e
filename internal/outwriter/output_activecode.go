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

// maxTreeRows bounds the directory rows of table output.
const maxTreeRows = 20

// WriteActiveCodeResult outputs the file hotspots. CSV carries the hottest files.
func WriteActiveCodeResult(result schema.ActiveCodeResult, cfg *contract.Config, duration time.Duration) error {
	return writeView(view{
		name: "active code",
		data: result,
		csv: func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"path", "commits", "additions", "deletions"}, func(cw *csv.Writer) error {
				for _, f := range result.HottestFiles {
					if err := cw.Write([]string{f.Path, itoa(f.Commits), itoa(f.Additions), itoa(f.Deletions)}); err != nil {
						return err
					}
				}
				return nil
			})
		},
		table: func(w io.Writer) error {
			return writeActiveCodeTable(w, result, cfg, duration)
		},
	}, cfg)
}

func writeActiveCodeTable(w io.Writer, result schema.ActiveCodeResult, cfg *contract.Config, duration time.Duration) error {
	width := GetMaxTablePathWidth(cfg, 30)

	files := newTable(w, "Rank", "Path", "Commits", "Additions", "Deletions")
	var data [][]string
	for i, f := range result.HottestFiles {
		data = append(data, []string{
			itoa(i + 1),
			contract.TruncatePath(f.Path, width),
			comma(f.Commits),
			signed(f.Additions),
			comma(f.Deletions),
		})
	}
	if err := renderTable(files, data); err != nil {
		return err
	}

	if len(result.DirectoryTree) > 0 {
		tree := newTable(w, "Directory", "Commits", "Files", "Lines")
		data = nil
		for _, d := range result.DirectoryTree[:min(maxTreeRows, len(result.DirectoryTree))] {
			data = append(data, []string{
				contract.TruncatePath(strings.Repeat("  ", d.Depth)+d.Path, width),
				comma(d.Commits),
				comma(d.FileCount),
				fmt.Sprintf("%s/-%s", signed(d.Additions), comma(d.Deletions)),
			})
		}
		if err := renderTable(tree, data); err != nil {
			return err
		}
	}

	writeFooter(w, fmt.Sprintf("Active code across %d files", result.TotalFilesChanged), result.Period, duration)
	return nil
}
