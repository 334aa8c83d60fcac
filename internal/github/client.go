package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/dshills/docimpact/internal/changes"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

const searchPageSize = 100

var _ changes.Platform = (*Client)(nil)

// Client implements changes.Platform on the GitHub REST API.
type Client struct {
	gh     *gh.Client
	logger *slog.Logger
}

// NewClient creates a GitHub client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (REST client with token auth)
//
// apiURL selects a GitHub Enterprise Server endpoint; empty or
// DefaultAPIURL means github.com.
func NewClient(token, apiURL string) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	if apiURL != "" && strings.TrimRight(apiURL, "/") != DefaultAPIURL {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub API URL %q: %w", apiURL, err)
		}
	}
	return &Client{gh: client, logger: slog.Default()}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and
// base URL. Used by tests to point at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	client.BaseURL = u

	return &Client{gh: client, logger: slog.Default()}, nil
}

// SetLogger replaces the logger used for API call diagnostics.
func (c *Client) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Repository confirms repo exists and returns its canonical owner and name.
func (c *Client) Repository(ctx context.Context, repo changes.Repo) (changes.Repo, error) {
	r, resp, err := c.gh.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return changes.Repo{}, err
	}
	c.logRateLimit(resp, repo.FullName(), 0, 1)

	out := changes.Repo{Owner: r.GetOwner().GetLogin(), Name: r.GetName()}
	if out.Owner == "" || out.Name == "" {
		return repo, nil
	}
	return out, nil
}

// ReleaseCreatedAt returns the creation time of the release tagged tag.
func (c *Client) ReleaseCreatedAt(ctx context.Context, repo changes.Repo, tag string) (time.Time, error) {
	rel, resp, err := c.gh.Repositories.GetReleaseByTag(ctx, repo.Owner, repo.Name, tag)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetching release %s: %w", tag, err)
	}
	c.logRateLimit(resp, repo.FullName()+"/releases/tags", 0, 1)
	return releaseTime(rel)
}

// LatestReleaseCreatedAt returns the creation time of the latest release,
// or changes.ErrNoReleases when the repository has none.
func (c *Client) LatestReleaseCreatedAt(ctx context.Context, repo changes.Repo) (time.Time, error) {
	rel, resp, err := c.gh.Repositories.GetLatestRelease(ctx, repo.Owner, repo.Name)
	if err != nil {
		if isNotFound(err) {
			return time.Time{}, changes.ErrNoReleases
		}
		return time.Time{}, fmt.Errorf("fetching latest release: %w", err)
	}
	c.logRateLimit(resp, repo.FullName()+"/releases/latest", 0, 1)
	return releaseTime(rel)
}

// SearchMerged runs the issue search
//
//	repo:owner/name is:pr is:merged merged:>=YYYY-MM-DD
//
// and pages through results until limit change-sets with a merge time have
// been collected.
func (c *Client) SearchMerged(ctx context.Context, repo changes.Repo, since time.Time, limit int) ([]changes.Ref, int, error) {
	query := SearchQuery(repo, since)
	c.logger.Info("searching merged change-sets", "query", query)

	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: searchPageSize}}
	if limit > 0 && limit < searchPageSize {
		opts.PerPage = limit
	}

	refs := []changes.Ref{}
	total := 0
	for {
		result, resp, err := c.gh.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, 0, fmt.Errorf("searching issues (page %d): %w", opts.Page, err)
		}
		c.logRateLimit(resp, repo.FullName()+"/search", opts.Page, len(result.Issues))
		total = result.GetTotal()

		for _, issue := range result.Issues {
			if !issue.IsPullRequest() {
				continue
			}
			mergedAt := issue.GetPullRequestLinks().GetMergedAt().Time
			if mergedAt.IsZero() {
				mergedAt, err = c.mergedAt(ctx, repo, issue.GetNumber())
				if err != nil {
					return nil, 0, err
				}
			}
			if mergedAt.IsZero() {
				continue
			}
			refs = append(refs, changes.Ref{Number: issue.GetNumber(), MergedAt: mergedAt})
			if limit > 0 && len(refs) >= limit {
				return refs, total, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return refs, total, nil
}

// SearchQuery builds the merged-since issue search for repo.
func SearchQuery(repo changes.Repo, since time.Time) string {
	return fmt.Sprintf("repo:%s is:pr is:merged merged:>=%s", repo.FullName(), since.UTC().Format(time.DateOnly))
}

// ChangeSet fetches a pull request, its diff and its changed files.
func (c *Client) ChangeSet(ctx context.Context, repo changes.Repo, number int) (changes.Detail, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return changes.Detail{}, fmt.Errorf("fetching pull request #%d: %w", number, err)
	}
	c.logRateLimit(resp, repo.FullName()+"/pulls", 0, 1)

	diff, resp, err := c.gh.PullRequests.GetRaw(ctx, repo.Owner, repo.Name, number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return changes.Detail{}, fmt.Errorf("fetching diff for #%d: %w", number, err)
	}
	c.logRateLimit(resp, repo.FullName()+"/pulls/diff", 0, 1)

	files, err := c.changedFiles(ctx, repo, number)
	if err != nil {
		return changes.Detail{}, err
	}

	d := changes.Detail{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Description:  pr.GetBody(),
		URL:          pr.GetHTMLURL(),
		Author:       pr.GetUser().GetLogin(),
		Diff:         diff,
		ChangedFiles: files,
	}
	if pr.MergedAt != nil {
		t := pr.GetMergedAt().Time
		d.MergedAt = &t
	}
	return d, nil
}

func (c *Client) changedFiles(ctx context.Context, repo changes.Repo, number int) ([]string, error) {
	opts := &gh.ListOptions{PerPage: 100}
	files := []string{}
	for {
		page, resp, err := c.gh.PullRequests.ListFiles(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing files for #%d (page %d): %w", number, opts.Page, err)
		}
		c.logRateLimit(resp, repo.FullName()+"/pulls/files", opts.Page, len(page))
		for _, f := range page {
			files = append(files, f.GetFilename())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// mergedAt looks up the merge time of a search hit whose links lack one.
func (c *Client) mergedAt(ctx context.Context, repo changes.Repo, number int) (time.Time, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
	if err != nil {
		return time.Time{}, fmt.Errorf("fetching pull request #%d: %w", number, err)
	}
	c.logRateLimit(resp, repo.FullName()+"/pulls", 0, 1)
	return pr.GetMergedAt().Time, nil
}

func releaseTime(rel *gh.RepositoryRelease) (time.Time, error) {
	created := rel.GetCreatedAt().Time
	if created.IsZero() {
		created = rel.GetPublishedAt().Time
	}
	if created.IsZero() {
		return time.Time{}, errors.New("release has no creation date")
	}
	return created, nil
}

func isNotFound(err error) bool {
	var errResp *gh.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

// logRateLimit logs the GitHub API rate limit status after each call.
func (c *Client) logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	c.logger.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		c.logger.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
