package agg

import (
	"sort"
	"strings"

	"github.com/huangsam/commitpulse/schema"
)

// hottestFilesLimit is the number of files listed as hottest.
const hottestFilesLimit = 15

// CommitFiles is the file list of one commit together with its repository.
type CommitFiles struct {
	RepositoryName string
	Files          []schema.FileChange
}

// ActiveCode aggregates file-level activity. When prefixRepo is set, every path
// is qualified with its repository name so files of different repositories stay apart.
func ActiveCode(commits []CommitFiles, period schema.Period, prefixRepo bool) schema.ActiveCodeResult {
	files := make(map[string]*schema.FileActivity)
	for _, c := range commits {
		prefix := ""
		if prefixRepo && c.RepositoryName != "" {
			prefix = c.RepositoryName + "/"
		}
		for _, f := range c.Files {
			if f.Path == "" {
				continue
			}
			path := prefix + f.Path
			fa, ok := files[path]
			if !ok {
				fa = &schema.FileActivity{Path: path}
				files[path] = fa
			}
			fa.Commits++
			fa.Additions += f.Additions
			fa.Deletions += f.Deletions
		}
	}

	result := schema.EmptyActiveCode(period)
	if len(files) == 0 {
		return result
	}
	result.TotalFilesChanged = len(files)

	all := make([]schema.FileActivity, 0, len(files))
	for _, fa := range files {
		all = append(all, *fa)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Commits != all[j].Commits {
			return all[i].Commits > all[j].Commits
		}
		if all[i].LinesChanged() != all[j].LinesChanged() {
			return all[i].LinesChanged() > all[j].LinesChanged()
		}
		return all[i].Path < all[j].Path
	})
	result.HottestFiles = all[:min(hottestFilesLimit, len(all))]
	result.DirectoryTree = directoryTree(all)
	return result
}

// directoryTree rolls file activity up into every ancestor directory.
func directoryTree(files []schema.FileActivity) []schema.DirectoryActivity {
	dirs := make(map[string]*schema.DirectoryActivity)
	for _, f := range files {
		parts := strings.Split(f.Path, "/")
		for i := 1; i < len(parts); i++ {
			dir := strings.Join(parts[:i], "/")
			da, ok := dirs[dir]
			if !ok {
				da = &schema.DirectoryActivity{Path: dir, Depth: strings.Count(dir, "/")}
				dirs[dir] = da
			}
			// Paths are unique per file, so each file counts once per ancestor
			da.Commits += f.Commits
			da.Additions += f.Additions
			da.Deletions += f.Deletions
			da.FileCount++
		}
	}

	tree := make([]schema.DirectoryActivity, 0, len(dirs))
	for _, da := range dirs {
		tree = append(tree, *da)
	}
	sort.Slice(tree, func(i, j int) bool {
		if tree[i].Commits != tree[j].Commits {
			return tree[i].Commits > tree[j].Commits
		}
		if tree[i].FileCount != tree[j].FileCount {
			return tree[i].FileCount > tree[j].FileCount
		}
		return tree[i].Path < tree[j].Path
	})
	return tree
}
