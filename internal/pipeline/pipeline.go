// Package pipeline runs one documentation-impact analysis: resolve the
// repository and window, retrieve merged change-sets, classify them in
// order, and aggregate the verdicts into a report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/docimpact/internal/analysis"
	"github.com/dshills/docimpact/internal/changes"
	"github.com/dshills/docimpact/internal/report"
)

// Params selects what one run analyzes.
type Params struct {
	// RepoRef is any form accepted by changes.ParseRepoRef.
	RepoRef string
	// Since, when set, overrides release-based boundary resolution.
	Since *time.Time
	// ReleaseTag names the release whose creation date starts the window.
	ReleaseTag string
}

// RetrievalError marks a failure talking to the hosting platform. It is
// fatal to the run.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return e.Err.Error() }
func (e *RetrievalError) Unwrap() error { return e.Err }

// Classifier is the part of analysis.Classifier the pipeline uses.
type Classifier interface {
	Classify(ctx context.Context, d changes.Detail) analysis.AnnotatedVerdict
}

// Pipeline wires a retriever to a classifier.
type Pipeline struct {
	retriever  *changes.Retriever
	classifier Classifier
	logger     *slog.Logger
	now        func() time.Time
	newRunID   func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the progress logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time stamped on reports.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunID overrides run ID generation.
func WithRunID(f func() string) Option {
	return func(p *Pipeline) { p.newRunID = f }
}

// New creates a Pipeline.
func New(r *changes.Retriever, c Classifier, opts ...Option) *Pipeline {
	p := &Pipeline{
		retriever:  r,
		classifier: c,
		logger:     slog.Default(),
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run executes one analysis. Only retrieval failures are returned as
// errors; classification problems are recorded in the report items.
//
// All details are fetched before the first model call, so a retrieval
// failure never leaves a partial report.
func (p *Pipeline) Run(ctx context.Context, params Params) (*report.Report, error) {
	repo, err := p.retriever.Resolve(ctx, params.RepoRef)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	since := p.retriever.ResolveSince(ctx, repo, params.Since, params.ReleaseTag)

	refs, err := p.retriever.ListMergedSince(ctx, repo, since)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	details := make([]changes.Detail, 0, len(refs))
	for i, ref := range refs {
		p.logger.Debug("fetching change-set", "number", ref.Number, "index", i+1, "total", len(refs))
		d, err := p.retriever.Detail(ctx, repo, ref.Number)
		if err != nil {
			return nil, &RetrievalError{Err: err}
		}
		details = append(details, d)
	}

	items := make([]analysis.AnnotatedVerdict, 0, len(details))
	for i, d := range details {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis interrupted: %w", err)
		}
		p.logger.Info("analyzing change-set", "number", d.Number, "index", i+1, "total", len(details))
		items = append(items, p.classifier.Classify(ctx, d))
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	r := report.Build(repo.FullName(), since, items)
	r.GeneratedAt = p.now()
	r.RunID = p.newRunID()
	p.logger.Info("analysis complete",
		"run_id", r.RunID,
		"total", r.TotalCount,
		"user_facing", r.UserFacingCount,
		"failed", r.FailedCount(),
	)
	return r, nil
}
