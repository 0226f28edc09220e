package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	c, err := New(context.Background(), "ghp_test", server.URL)
	require.NoError(t, err)
	return c
}

func commitJSON(sha, author, date string) string {
	return fmt.Sprintf(`{"sha":%q,"html_url":"https://github.com/acme/api/commit/%s",
		"commit":{"message":"feat: thing\n\nbody","author":{"name":%q},"committer":{"date":%q}},
		"author":{"login":"x","avatar_url":"https://avatars/%s"}}`, sha, sha, author, date, author)
}

func TestListCommits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.URL.Query().Get("since"))
		assert.Empty(t, r.URL.Query().Get("sha"))
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
			_, _ = fmt.Fprintf(w, "[%s,%s]", commitJSON("a1", "alice", "2024-03-01T10:00:00Z"), commitJSON("b2", "bob", "2024-03-02T10:00:00Z"))
		default:
			_, _ = fmt.Fprintf(w, "[%s]", commitJSON("c3", "carol", "2024-03-03T10:00:00Z"))
		}
	})
	c := newTestClient(t, mux)
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("follows pages", func(t *testing.T) {
		records, err := c.ListCommits(context.Background(), "acme/api", "", since, 10)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "a1", records[0].SHA)
		assert.Equal(t, "alice", records[0].AuthorName)
		assert.Equal(t, "https://avatars/alice", records[0].AuthorAvatar)
		assert.Equal(t, "feat: thing\n\nbody", records[0].Message)
		assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), records[1].CommitterDate.UTC())
		assert.Equal(t, "c3", records[2].SHA)
	})

	t.Run("stops at limit", func(t *testing.T) {
		records, err := c.ListCommits(context.Background(), "acme/api", "", since, 1)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("invalid name", func(t *testing.T) {
		_, err := c.ListCommits(context.Background(), "no-slash", "", since, 1)
		assert.Error(t, err)
	})
}

func TestListCommitsBranch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "release", r.URL.Query().Get("sha"))
		_, _ = fmt.Fprintf(w, "[%s]", commitJSON("r1", "alice", "2024-03-01T10:00:00Z"))
	})
	c := newTestClient(t, mux)

	records, err := c.ListCommits(context.Background(), "acme/api", "release", time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].SHA)
}

func TestListCommitsEmptyRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/empty/commits", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Git Repository is empty."}`))
	})
	c := newTestClient(t, mux)

	records, err := c.ListCommits(context.Background(), "acme/empty", "", time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListCommitsRenamed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/old/commits", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "http://"+r.Host+"/repositories/4242/commits")
		w.WriteHeader(http.StatusMovedPermanently)
		_, _ = w.Write([]byte(`{"message":"Moved Permanently"}`))
	})
	mux.HandleFunc("/repositories/4242", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":4242,"full_name":"acme/new"}`))
	})
	c := newTestClient(t, mux)

	_, err := c.ListCommits(context.Background(), "acme/old", "", time.Now(), 10)
	require.Error(t, err)
	renamed, ok := contract.AsRepoRenamed(err)
	require.True(t, ok)
	assert.Equal(t, "acme/old", renamed.FullName)
	assert.Equal(t, "acme/new", renamed.NewFullName)
	assert.Equal(t, int64(4242), renamed.ProviderID)
}

func TestGetCommitDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/commits/a1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"sha":"a1","stats":{"additions":12,"deletions":3,"total":15},
			"files":[{"filename":"src/main.go","status":"modified","additions":10,"deletions":3},
			{"filename":"README.md","status":"added","additions":2,"deletions":0}]}`))
	})
	mux.HandleFunc("/repos/acme/api/commits/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	stats, err := c.GetCommitStats(ctx, "acme/api", "a1")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Additions)
	assert.Equal(t, 3, stats.Deletions)
	assert.Equal(t, 2, stats.FilesChanged)

	files, err := c.GetCommitFiles(ctx, "acme/api", "a1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "src/main.go", files[0].Path)
	assert.Equal(t, "added", files[1].Status)

	_, err = c.GetCommitStats(ctx, "acme/api", "missing")
	assert.Error(t, err)
}

func TestGetRepoFullNameByID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repositories/7", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"full_name":"acme/seven"}`))
	})
	c := newTestClient(t, mux)

	name, err := c.GetRepoFullNameByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "acme/seven", name)

	_, err = c.GetRepoFullNameByID(context.Background(), 0)
	assert.Error(t, err)
}

func TestNewFactory(t *testing.T) {
	factory := NewFactory("")
	assert.NotNil(t, factory(context.Background(), "token"))
	assert.NotNil(t, factory(context.Background(), ""))
}
