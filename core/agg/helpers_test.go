package agg

import (
	"time"

	"github.com/huangsam/commitpulse/schema"
)

// testNow is a Friday.
var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// commitAt builds an enriched commit event that touched one file.
func commitAt(sha, author, repo string, ts time.Time, additions, deletions int) schema.TimelineEvent {
	return schema.TimelineEvent{
		ID:                 "commit:" + sha,
		Kind:               schema.EventKindCommit,
		Timestamp:          schema.FormatTimestamp(ts),
		RepositoryID:       "id-" + repo,
		RepositoryName:     repo,
		RepositoryFullName: "acme/" + repo,
		SHA:                sha,
		Message:            "update " + sha,
		Author:             author,
		AuthorAvatar:       "https://avatars.example.com/" + author,
		URL:                "https://github.com/acme/" + repo + "/commit/" + sha,
		Stats:              &schema.CommitStats{Additions: additions, Deletions: deletions, FilesChanged: 1},
	}
}

// withMessage replaces the message of an event.
func withMessage(e schema.TimelineEvent, msg string) schema.TimelineEvent {
	e.Message = msg
	return e
}

// unenriched drops the stats of an event.
func unenriched(e schema.TimelineEvent) schema.TimelineEvent {
	e.Stats = nil
	return e
}

func sumCommits(series []schema.DailyCount) int {
	total := 0
	for _, d := range series {
		total += d.Commits
	}
	return total
}
