// Package schema has all the types and constants shared across the engine.
package schema

import (
	"strings"
	"time"
)

// EventKindCommit is the only event kind produced today.
const EventKindCommit = "commit"

// CommitStats holds the line and file change counts of a single commit.
type CommitStats struct {
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	FilesChanged int `json:"files_changed"`
}

// TimelineEvent is a normalized commit enriched with repository context.
// Stats stays nil until enrichment succeeds for the commit.
type TimelineEvent struct {
	ID                 string       `json:"id"`
	Kind               string       `json:"type"`
	Timestamp          string       `json:"timestamp"`
	RepositoryID       string       `json:"repository_id"`
	RepositoryName     string       `json:"repository_name"`
	RepositoryFullName string       `json:"repository_full_name"`
	SHA                string       `json:"sha"`
	Message            string       `json:"message"`
	Author             string       `json:"author"`
	AuthorAvatar       string       `json:"author_avatar,omitempty"`
	URL                string       `json:"url"`
	Stats              *CommitStats `json:"stats,omitempty"`
}

// Additions returns the number of added lines, or zero when not enriched.
func (e TimelineEvent) Additions() int {
	if e.Stats == nil {
		return 0
	}
	return e.Stats.Additions
}

// Deletions returns the number of deleted lines, or zero when not enriched.
func (e TimelineEvent) Deletions() int {
	if e.Stats == nil {
		return 0
	}
	return e.Stats.Deletions
}

// FilesChanged returns the number of changed files, or zero when not enriched.
func (e TimelineEvent) FilesChanged() int {
	if e.Stats == nil {
		return 0
	}
	return e.Stats.FilesChanged
}

// Date returns the calendar date part of the timestamp.
func (e TimelineEvent) Date() string {
	if len(e.Timestamp) < len(DateFormat) {
		return e.Timestamp
	}
	return e.Timestamp[:len(DateFormat)]
}

// Time parses the event timestamp. The zero time is returned on malformed input.
func (e TimelineEvent) Time() time.Time {
	t, err := time.Parse(TimestampFormat, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// StatsKey is the composite key of the statistics cache.
type StatsKey struct {
	FullName string
	SHA      string
}

// StatsCacheEntry is an immutable row of the statistics cache.
type StatsCacheEntry struct {
	StatsKey
	CommitStats
	CreatedAt time.Time
}

// RepositoryRef describes a repository linked to a product.
type RepositoryRef struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch,omitempty"`
	ProviderID    int64  `json:"provider_id,omitempty"`
}

// Owner returns the owner segment of the full name.
func (r RepositoryRef) Owner() string {
	owner, _, _ := strings.Cut(r.FullName, "/")
	return owner
}

// Repo returns the repository segment of the full name.
func (r RepositoryRef) Repo() string {
	_, repo, _ := strings.Cut(r.FullName, "/")
	return repo
}

// DisplayName returns the short name, falling back to the repository segment.
func (r RepositoryRef) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Repo()
}

// RenameRepair records a repository whose full name changed at the provider.
type RenameRepair struct {
	RepositoryID string `json:"repository_id"`
	OldFullName  string `json:"old_full_name"`
	NewFullName  string `json:"new_full_name"`
	ProviderID   int64  `json:"provider_id,omitempty"`
}

// CommitRecord is a provider-neutral raw commit as returned by a hosting client.
type CommitRecord struct {
	SHA           string
	Message       string
	AuthorName    string
	AuthorAvatar  string
	CommitterDate time.Time
	HTMLURL       string
}

// FileChange is a single file touched by a commit.
type FileChange struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// Product groups repositories under an organization.
type Product struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Color          string `json:"color,omitempty"`
	OrganizationID string `json:"organization_id"`
}

// OrgMember is a member of an organization that may hold a credential.
type OrgMember struct {
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
}

// Organization member roles that may act on behalf of the organization.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)
