// Package ghclient is the GitHub implementation of the hosting client.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
	"golang.org/x/oauth2"
)

// Per-call deadlines for commit detail requests.
const (
	statsTimeout = 5 * time.Second
	filesTimeout = 10 * time.Second
)

// maxPerPage is the largest page GitHub serves for commit listings.
const maxPerPage = 100

var movedRepoPattern = regexp.MustCompile(`/repositories/(\d+)`)

// Client talks to the GitHub REST API on behalf of one token.
type Client struct {
	gh *github.Client
}

var _ contract.HostingClient = &Client{} // Compile-time check

// New creates a client authenticated with token. An empty baseURL targets github.com.
func New(ctx context.Context, token, baseURL string) (*Client, error) {
	httpClient := &http.Client{}
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	// Moved repositories answer 301; surface them instead of following silently
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	gh := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh}, nil
}

// NewFactory returns a ClientFactory bound to baseURL.
func NewFactory(baseURL string) contract.ClientFactory {
	return func(ctx context.Context, token string) contract.HostingClient {
		c, err := New(ctx, token, baseURL)
		if err != nil {
			// baseURL is validated with the rest of the config
			contract.LogWarn("Falling back to the public GitHub API", err)
			c, _ = New(ctx, token, "")
		}
		return c
	}
}

func splitFullName(fullName string) (string, string, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository name %q", fullName)
	}
	return owner, repo, nil
}

// ListCommits pages through branch until limit commits are collected.
// An empty repository yields no commits and no error.
func (c *Client) ListCommits(ctx context.Context, fullName, branch string, since time.Time, limit int) ([]schema.CommitRecord, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	opts := &github.CommitsListOptions{
		SHA:         branch,
		Since:       since,
		ListOptions: github.ListOptions{PerPage: min(limit, maxPerPage)},
	}
	var records []schema.CommitRecord
	for {
		commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusConflict {
				return nil, nil
			}
			if resp != nil && resp.StatusCode == http.StatusMovedPermanently {
				return nil, c.renamed(ctx, fullName, resp)
			}
			return nil, fmt.Errorf("failed to list commits of %s: %w", fullName, err)
		}

		for _, rc := range commits {
			records = append(records, toCommitRecord(rc))
			if len(records) >= limit {
				return records, nil
			}
		}
		if resp.NextPage == 0 {
			return records, nil
		}
		opts.Page = resp.NextPage
	}
}

// renamed builds the rename error from a 301 answer, resolving the new name when possible.
func (c *Client) renamed(ctx context.Context, fullName string, resp *github.Response) error {
	renameErr := &contract.RepoRenamedError{FullName: fullName}
	match := movedRepoPattern.FindStringSubmatch(resp.Header.Get("Location"))
	if match == nil {
		return renameErr
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return renameErr
	}
	renameErr.ProviderID = id
	if newName, err := c.GetRepoFullNameByID(ctx, id); err == nil {
		renameErr.NewFullName = newName
	}
	return renameErr
}

func toCommitRecord(rc *github.RepositoryCommit) schema.CommitRecord {
	commit := rc.GetCommit()
	return schema.CommitRecord{
		SHA:           rc.GetSHA(),
		Message:       commit.GetMessage(),
		AuthorName:    commit.GetAuthor().GetName(),
		AuthorAvatar:  rc.GetAuthor().GetAvatarURL(),
		CommitterDate: commit.GetCommitter().GetDate().Time,
		HTMLURL:       rc.GetHTMLURL(),
	}
}

// GetCommitStats returns line and file counts of a commit.
func (c *Client) GetCommitStats(ctx context.Context, fullName, sha string) (schema.CommitStats, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return schema.CommitStats{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	rc, _, err := c.gh.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return schema.CommitStats{}, fmt.Errorf("failed to get commit %s of %s: %w", schema.ShortSHA(sha), fullName, err)
	}
	return schema.CommitStats{
		Additions:    rc.GetStats().GetAdditions(),
		Deletions:    rc.GetStats().GetDeletions(),
		FilesChanged: len(rc.Files),
	}, nil
}

// GetCommitFiles returns the files touched by a commit.
func (c *Client) GetCommitFiles(ctx context.Context, fullName, sha string) ([]schema.FileChange, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, filesTimeout)
	defer cancel()

	rc, _, err := c.gh.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get files of commit %s of %s: %w", schema.ShortSHA(sha), fullName, err)
	}
	files := make([]schema.FileChange, 0, len(rc.Files))
	for _, f := range rc.Files {
		files = append(files, schema.FileChange{
			Path:      f.GetFilename(),
			Status:    f.GetStatus(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
		})
	}
	return files, nil
}

// GetRepoFullNameByID resolves the current owner/name of a repository.
func (c *Client) GetRepoFullNameByID(ctx context.Context, providerID int64) (string, error) {
	if providerID <= 0 {
		return "", errors.New("repository has no provider id")
	}
	repo, _, err := c.gh.Repositories.GetByID(ctx, providerID)
	if err != nil {
		return "", fmt.Errorf("failed to look up repository %d: %w", providerID, err)
	}
	if repo.GetFullName() == "" {
		return "", fmt.Errorf("repository %d has no full name", providerID)
	}
	return repo.GetFullName(), nil
}
