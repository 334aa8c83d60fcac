package changes

import (
	"context"
	"errors"
	"time"
)

// UnknownAuthor is reported when the platform returns no author login.
const UnknownAuthor = "Unknown"

// ErrNoReleases is returned by Platform.LatestReleaseCreatedAt when the
// repository has never published a release.
var ErrNoReleases = errors.New("no releases found")

// Repo identifies a repository on the hosting platform.
type Repo struct {
	Owner string
	Name  string
}

// FullName returns "owner/name".
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

func (r Repo) String() string { return r.FullName() }

// Ref is a merged change-set returned by a search, before details are
// fetched.
type Ref struct {
	Number   int
	MergedAt time.Time
}

// Detail is everything the classifier needs to know about one change-set.
type Detail struct {
	Number       int
	Title        string
	Description  string
	URL          string
	Author       string
	MergedAt     *time.Time
	Diff         string
	ChangedFiles []string
}

// MergedAtISO renders the merge time as RFC 3339, or "" when unmerged.
func (d Detail) MergedAtISO() string {
	if d.MergedAt == nil {
		return ""
	}
	return d.MergedAt.UTC().Format(time.RFC3339)
}

// Platform is the hosting platform as seen by the retriever.
type Platform interface {
	// Repository confirms the repository exists and returns its canonical name.
	Repository(ctx context.Context, repo Repo) (Repo, error)
	// ReleaseCreatedAt returns the creation time of the release with tag.
	ReleaseCreatedAt(ctx context.Context, repo Repo, tag string) (time.Time, error)
	// LatestReleaseCreatedAt returns ErrNoReleases when there is none.
	LatestReleaseCreatedAt(ctx context.Context, repo Repo) (time.Time, error)
	// SearchMerged returns up to limit change-sets merged on or after the
	// calendar date of since, plus the platform's total match count.
	SearchMerged(ctx context.Context, repo Repo, since time.Time, limit int) ([]Ref, int, error)
	// ChangeSet fetches metadata, diff and changed files for one change-set.
	ChangeSet(ctx context.Context, repo Repo, number int) (Detail, error)
}
