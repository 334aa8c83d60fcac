package github_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docimpact/internal/changes"
	ghAdapter "github.com/dshills/docimpact/internal/github"
)

var repo = changes.Repo{Owner: "acme", Name: "tool"}

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *ghAdapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/", "test-token")
	require.NoError(t, err)
	return client
}

func TestRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"name": "Tool", "owner": {"login": "Acme"}}`)
	})
	client := newTestClient(t, mux)

	got, err := client.Repository(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, changes.Repo{Owner: "Acme", Name: "Tool"}, got)
}

func TestRepository_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	client := newTestClient(t, mux)

	_, err := client.Repository(context.Background(), repo)
	assert.Error(t, err)
}

func TestReleaseCreatedAt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool/releases/tags/v1.2.0", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name": "v1.2.0", "created_at": "2024-03-01T10:00:00Z", "published_at": "2024-03-02T10:00:00Z"}`)
	})
	client := newTestClient(t, mux)

	got, err := client.ReleaseCreatedAt(context.Background(), repo, "v1.2.0")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), got.UTC())
}

func TestReleaseCreatedAt_UnknownTag(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool/releases/tags/nope", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	client := newTestClient(t, mux)

	_, err := client.ReleaseCreatedAt(context.Background(), repo, "nope")
	require.Error(t, err)
	assert.NotErrorIs(t, err, changes.ErrNoReleases)
}

func TestLatestReleaseCreatedAt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name": "v2.0.0", "created_at": "2024-05-05T00:00:00Z"}`)
	})
	client := newTestClient(t, mux)

	got, err := client.LatestReleaseCreatedAt(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC), got.UTC())
}

func TestLatestReleaseCreatedAt_NoReleases(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	client := newTestClient(t, mux)

	_, err := client.LatestReleaseCreatedAt(context.Background(), repo)
	assert.ErrorIs(t, err, changes.ErrNoReleases)
}

func TestLatestReleaseCreatedAt_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "boom"}`)
	})
	client := newTestClient(t, mux)

	_, err := client.LatestReleaseCreatedAt(context.Background(), repo)
	require.Error(t, err)
	assert.False(t, errors.Is(err, changes.ErrNoReleases))
}

func TestSearchQuery(t *testing.T) {
	since := time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "repo:acme/tool is:pr is:merged merged:>=2024-01-15", ghAdapter.SearchQuery(repo, since))
}

func TestSearchMerged_Paginates(t *testing.T) {
	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "repo:acme/tool is:pr is:merged merged:>=2024-01-01", r.URL.Query().Get("q"))
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/search/issues?page=2>; rel="next"`, serverURL))
			fmt.Fprint(w, `{"total_count": 3, "items": [
				{"number": 10, "pull_request": {"url": "u", "merged_at": "2024-01-02T00:00:00Z"}},
				{"number": 11, "pull_request": {"url": "u", "merged_at": "2024-01-03T00:00:00Z"}}
			]}`)
		default:
			fmt.Fprint(w, `{"total_count": 3, "items": [
				{"number": 12, "pull_request": {"url": "u", "merged_at": "2024-01-04T00:00:00Z"}}
			]}`)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	serverURL = server.URL
	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/", "")
	require.NoError(t, err)

	refs, total, err := client.SearchMerged(context.Background(), repo, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 100)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, refs, 3)
	assert.Equal(t, []int{10, 11, 12}, []int{refs[0].Number, refs[1].Number, refs[2].Number})
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), refs[2].MergedAt.UTC())
}

func TestSearchMerged_StopsAtLimit(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/issues", func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		w.Header().Set("Link", `<http://example.invalid/search/issues?page=2>; rel="next"`)
		fmt.Fprint(w, `{"total_count": 50, "items": [
			{"number": 1, "pull_request": {"merged_at": "2024-01-02T00:00:00Z"}},
			{"number": 2, "pull_request": {"merged_at": "2024-01-02T00:00:00Z"}}
		]}`)
	})
	client := newTestClient(t, mux)

	refs, total, err := client.SearchMerged(context.Background(), repo, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
	assert.Equal(t, 50, total)
	assert.Equal(t, 1, calls)
}

func TestSearchMerged_LooksUpMissingMergeTime(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/issues", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count": 2, "items": [
			{"number": 5, "pull_request": {"url": "u"}},
			{"number": 6}
		]}`)
	})
	mux.HandleFunc("GET /repos/acme/tool/pulls/5", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 5, "merged_at": "2024-02-02T12:00:00Z"}`)
	})
	client := newTestClient(t, mux)

	refs, _, err := client.SearchMerged(context.Background(), repo, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 100)
	require.NoError(t, err)
	require.Len(t, refs, 1, "plain issues are skipped")
	assert.Equal(t, 5, refs[0].Number)
	assert.Equal(t, time.Date(2024, 2, 2, 12, 0, 0, 0, time.UTC), refs[0].MergedAt.UTC())
}

func TestSearchMerged_Error(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/issues", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message": "Validation Failed"}`)
	})
	client := newTestClient(t, mux)

	_, _, err := client.SearchMerged(context.Background(), repo, time.Now(), 100)
	assert.Error(t, err)
}

func TestChangeSet(t *testing.T) {
	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "application/vnd.github.v3.diff" {
			fmt.Fprint(w, "diff --git a/cmd/main.go b/cmd/main.go\n+flag\n")
			return
		}
		fmt.Fprint(w, `{
			"number": 7,
			"title": "Add --json flag",
			"body": "Adds machine-readable output.",
			"html_url": "https://github.com/acme/tool/pull/7",
			"user": {"login": "alice"},
			"merged_at": "2024-01-10T08:00:00Z"
		}`)
	})
	mux.HandleFunc("GET /repos/acme/tool/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"filename": "docs/cli.md"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/tool/pulls/7/files?page=2>; rel="next"`, serverURL))
		fmt.Fprint(w, `[{"filename": "cmd/main.go"}]`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	serverURL = server.URL
	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL, "")
	require.NoError(t, err)

	d, err := client.ChangeSet(context.Background(), repo, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, d.Number)
	assert.Equal(t, "Add --json flag", d.Title)
	assert.Equal(t, "Adds machine-readable output.", d.Description)
	assert.Equal(t, "https://github.com/acme/tool/pull/7", d.URL)
	assert.Equal(t, "alice", d.Author)
	assert.Equal(t, "diff --git a/cmd/main.go b/cmd/main.go\n+flag\n", d.Diff)
	assert.Equal(t, []string{"cmd/main.go", "docs/cli.md"}, d.ChangedFiles)
	require.NotNil(t, d.MergedAt)
	assert.Equal(t, "2024-01-10T08:00:00Z", d.MergedAtISO())
}

func TestChangeSet_NoAuthorNoMerge(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool/pulls/8", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "application/vnd.github.v3.diff" {
			return
		}
		fmt.Fprint(w, `{"number": 8, "title": "t"}`)
	})
	mux.HandleFunc("GET /repos/acme/tool/pulls/8/files", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	client := newTestClient(t, mux)

	d, err := client.ChangeSet(context.Background(), repo, 8)
	require.NoError(t, err)
	assert.Empty(t, d.Author)
	assert.Nil(t, d.MergedAt)
	assert.Equal(t, []string{}, d.ChangedFiles)
}

func TestChangeSet_DiffError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/tool/pulls/9", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "application/vnd.github.v3.diff" {
			w.WriteHeader(http.StatusNotAcceptable)
			fmt.Fprint(w, `{"message": "diff too large"}`)
			return
		}
		fmt.Fprint(w, `{"number": 9}`)
	})
	client := newTestClient(t, mux)

	_, err := client.ChangeSet(context.Background(), repo, 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching diff for #9")
}

func TestNewClient_EnterpriseURL(t *testing.T) {
	_, err := ghAdapter.NewClient("token", "https://ghe.example.com/api/v3")
	require.NoError(t, err)

	_, err = ghAdapter.NewClient("token", "")
	require.NoError(t, err)
}
