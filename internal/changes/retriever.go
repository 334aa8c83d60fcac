package changes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dshills/docimpact/internal/gitctx"
)

const (
	// DefaultMaxResults caps the number of change-sets per run.
	DefaultMaxResults = 100
	// DefaultLookback is the window used when no release exists.
	DefaultLookback = 30 * 24 * time.Hour
)

// BoundarySource names the rule that produced a since boundary.
type BoundarySource string

const (
	SourceExplicit      BoundarySource = "explicit"
	SourceReleaseTag    BoundarySource = "release-tag"
	SourceLatestRelease BoundarySource = "latest-release"
	SourceLookback      BoundarySource = "lookback"
)

// Retriever lists and fetches merged change-sets through a Platform.
type Retriever struct {
	platform   Platform
	now        func() time.Time
	maxResults int
	lookback   time.Duration
	logger     *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Retriever) { r.now = now }
}

// WithMaxResults overrides DefaultMaxResults. Non-positive values are ignored.
func WithMaxResults(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.maxResults = n
		}
	}
}

// WithLookback overrides DefaultLookback. Non-positive values are ignored.
func WithLookback(d time.Duration) Option {
	return func(r *Retriever) {
		if d > 0 {
			r.lookback = d
		}
	}
}

// WithLogger sets the logger used for progress and fallback messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Retriever) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRetriever creates a Retriever over p.
func NewRetriever(p Platform, opts ...Option) *Retriever {
	r := &Retriever{
		platform:   p,
		now:        time.Now,
		maxResults: DefaultMaxResults,
		lookback:   DefaultLookback,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses a repository reference and confirms it exists.
func (r *Retriever) Resolve(ctx context.Context, ref string) (Repo, error) {
	repo, err := ParseRepoRef(ref)
	if err != nil {
		return Repo{}, err
	}
	r.logger.Info("fetching repository", "repo", repo.FullName())
	canonical, err := r.platform.Repository(ctx, repo)
	if err != nil {
		return Repo{}, fmt.Errorf("fetching repository %s: %w", repo.FullName(), err)
	}
	return canonical, nil
}

// ResolveSince determines the lower bound of the analysis window. It never
// fails: every lookup error degrades to the next rule.
func (r *Retriever) ResolveSince(ctx context.Context, repo Repo, explicit *time.Time, tag string) time.Time {
	since, source := r.resolveSince(ctx, repo, explicit, tag)
	r.logger.Info("resolved since boundary",
		"repo", repo.FullName(),
		"since", since.UTC().Format(time.DateOnly),
		"source", string(source),
	)
	return since
}

func (r *Retriever) resolveSince(ctx context.Context, repo Repo, explicit *time.Time, tag string) (time.Time, BoundarySource) {
	if explicit != nil {
		return *explicit, SourceExplicit
	}

	if tag != "" {
		created, err := r.platform.ReleaseCreatedAt(ctx, repo, tag)
		if err == nil {
			return created, SourceReleaseTag
		}
		r.logger.Warn("release tag lookup failed, falling back", "tag", tag, "error", err)
	}

	created, err := r.platform.LatestReleaseCreatedAt(ctx, repo)
	switch {
	case err == nil:
		return created, SourceLatestRelease
	case errors.Is(err, ErrNoReleases):
		r.logger.Info("no releases found, using lookback window", "lookback", r.lookback.String())
	default:
		r.logger.Warn("latest release lookup failed, using lookback window", "error", err)
	}
	return r.now().Add(-r.lookback), SourceLookback
}

// ListMergedSince returns up to the configured maximum of change-sets merged
// on or after the calendar date of since, in the platform's order. An empty
// result is not an error.
func (r *Retriever) ListMergedSince(ctx context.Context, repo Repo, since time.Time) ([]Ref, error) {
	refs, total, err := r.platform.SearchMerged(ctx, repo, since, r.maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching merged change-sets in %s: %w", repo.FullName(), err)
	}

	out := make([]Ref, 0, len(refs))
	for _, ref := range refs {
		if ref.MergedAt.IsZero() || !OnOrAfterDate(ref.MergedAt, since) {
			continue
		}
		out = append(out, ref)
		if len(out) == r.maxResults {
			r.logger.Info("reached change-set limit, remaining results ignored",
				"limit", r.maxResults, "total", total)
			break
		}
	}
	r.logger.Info("found merged change-sets", "count", len(out),
		"since", since.UTC().Format(time.DateOnly))
	return out, nil
}

// Detail fetches one change-set's details. When the platform reports no
// changed files they are taken from the diff headers.
func (r *Retriever) Detail(ctx context.Context, repo Repo, number int) (Detail, error) {
	d, err := r.platform.ChangeSet(ctx, repo, number)
	if err != nil {
		return Detail{}, fmt.Errorf("fetching change-set #%d: %w", number, err)
	}
	if d.Author == "" {
		d.Author = UnknownAuthor
	}
	if len(d.ChangedFiles) == 0 && d.Diff != "" {
		d.ChangedFiles = gitctx.Files(d.Diff)
	}
	return d, nil
}

// OnOrAfterDate reports whether t falls on or after the calendar date of
// boundary, both taken in UTC. Time of day is ignored.
func OnOrAfterDate(t, boundary time.Time) bool {
	return !truncateDay(t).Before(truncateDay(boundary))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
