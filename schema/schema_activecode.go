package schema

// FileActivity holds accumulated activity for one file.
type FileActivity struct {
	Path      string `json:"path"`
	Commits   int    `json:"commits"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// LinesChanged returns additions plus deletions.
func (f FileActivity) LinesChanged() int {
	return f.Additions + f.Deletions
}

// DirectoryActivity holds accumulated activity for one directory and its descendants.
type DirectoryActivity struct {
	Path      string `json:"path"`
	Commits   int    `json:"commits"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	FileCount int    `json:"file_count"`
	Depth     int    `json:"depth"`
}

// ActiveCodeResult is the active code view.
type ActiveCodeResult struct {
	Period            Period              `json:"period"`
	HottestFiles      []FileActivity      `json:"hottest_files"`
	DirectoryTree     []DirectoryActivity `json:"directory_tree"`
	QuietAreas        []DirectoryActivity `json:"quiet_areas"`
	TotalFilesChanged int                 `json:"total_files_changed"`
}

// EmptyActiveCode returns the canonical empty active code view.
func EmptyActiveCode(period Period) ActiveCodeResult {
	return ActiveCodeResult{
		Period:        period,
		HottestFiles:  []FileActivity{},
		DirectoryTree: []DirectoryActivity{},
		QuietAreas:    []DirectoryActivity{},
	}
}
