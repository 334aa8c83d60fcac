// Package report folds per-change-set verdicts into the summary written at
// the end of a run.
package report

import (
	"sort"
	"time"

	"github.com/dshills/docimpact/internal/analysis"
)

// NoUserFacingMessage marks a report in which no change-set was user-facing.
const NoUserFacingMessage = "No user-facing changes detected in the analyzed PRs."

// Suggestion is one suggested_content entry with the change-set it came from.
type Suggestion struct {
	ChangeNumber int    `json:"pr_number"`
	Text         string `json:"text"`
}

// Report is the aggregated result of one run.
type Report struct {
	RunID       string    `json:"run_id,omitempty"`
	RepoRef     string    `json:"repository"`
	GeneratedAt time.Time `json:"generated_at"`
	Since       time.Time `json:"since"`

	TotalCount      int `json:"total_prs"`
	UserFacingCount int `json:"user_facing_prs"`

	// Message is NoUserFacingMessage when no item was user-facing.
	Message string `json:"message,omitempty"`

	// Items holds every verdict in retrieval order.
	Items []analysis.AnnotatedVerdict `json:"analysis_results"`

	// UserFacing is the user-facing subset of Items, same order.
	UserFacing     []analysis.AnnotatedVerdict `json:"-"`
	UpdateExisting []string                    `json:"-"`
	CreateNew      []string                    `json:"-"`
	Suggestions    []Suggestion                `json:"-"`
}

// Build aggregates items. It is deterministic: GeneratedAt and RunID are
// left for the caller to stamp.
//
// UpdateExisting and CreateNew are the sorted, duplicate-free unions over
// user-facing items. Suggestions lists every suggested_content entry of
// every user-facing item in arrival order without deduplication.
func Build(repoRef string, since time.Time, items []analysis.AnnotatedVerdict) *Report {
	if items == nil {
		items = []analysis.AnnotatedVerdict{}
	}
	r := &Report{
		RepoRef:        repoRef,
		Since:          since,
		TotalCount:     len(items),
		Items:          items,
		UserFacing:     []analysis.AnnotatedVerdict{},
		UpdateExisting: []string{},
		CreateNew:      []string{},
		Suggestions:    []Suggestion{},
	}

	update := map[string]struct{}{}
	create := map[string]struct{}{}
	for _, it := range items {
		if !it.UserFacing {
			continue
		}
		r.UserFacing = append(r.UserFacing, it)
		for _, doc := range it.DocsImpact.UpdateExisting {
			update[doc] = struct{}{}
		}
		for _, doc := range it.DocsImpact.CreateNew {
			create[doc] = struct{}{}
		}
		for _, s := range it.DocsImpact.SuggestedContent {
			r.Suggestions = append(r.Suggestions, Suggestion{ChangeNumber: it.Number, Text: s})
		}
	}
	r.UserFacingCount = len(r.UserFacing)
	if r.UserFacingCount == 0 {
		r.Message = NoUserFacingMessage
	}
	r.UpdateExisting = sortedKeys(update)
	r.CreateNew = sortedKeys(create)
	return r
}

// HasUserFacing reports whether any item was user-facing.
func (r *Report) HasUserFacing() bool { return r.UserFacingCount > 0 }

// FailedCount returns the number of items whose classification failed.
func (r *Report) FailedCount() int {
	n := 0
	for _, it := range r.Items {
		if it.Failed() {
			n++
		}
	}
	return n
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
