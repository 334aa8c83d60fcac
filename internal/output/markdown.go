package output

import (
	"io"

	"github.com/dshills/docimpact/internal/report"
)

// MarkdownWriter outputs the report as a markdown document.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Ext() string { return "md" }

func (m *MarkdownWriter) Write(w io.Writer, r *report.Report) error {
	ew := &errWriter{w: w}

	ew.printf("# Documentation Update Report for %s\n\n", r.RepoRef)
	ew.printf("Generated on: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	ew.printf("Analyzing PRs since: %s\n\n", r.Since.Format("2006-01-02"))

	ew.printf("## Summary\n\n")
	ew.printf("Total PRs analyzed: %d\n", r.TotalCount)
	ew.printf("PRs with user-facing changes: %d\n\n", r.UserFacingCount)

	if !r.HasUserFacing() {
		ew.printf("%s\n", r.Message)
		return ew.err
	}

	ew.printf("## Documentation Updates Needed\n\n")
	mdList(ew, "### Existing Documentation to Update", r.UpdateExisting)
	mdList(ew, "### New Documentation to Create", r.CreateNew)
	if len(r.Suggestions) > 0 {
		ew.printf("### Suggested Content Updates\n\n")
		for _, s := range r.Suggestions {
			ew.printf("- PR #%d: %s\n", s.ChangeNumber, s.Text)
		}
		ew.printf("\n")
	}

	ew.printf("## Detailed PR Analysis\n\n")
	for _, it := range r.UserFacing {
		ew.printf("### PR #%d: %s\n\n", it.Number, it.Title)
		ew.printf("- URL: %s\n", it.URL)
		if it.Author != "" {
			ew.printf("- Author: %s\n", it.Author)
		}
		if it.MergedAt != "" {
			ew.printf("- Merged: %s\n", it.MergedAt)
		}
		ew.printf("- User-facing: Yes\n")
		ew.printf("- Reasoning: %s\n\n", it.Reasoning)
		mdList(ew, "#### Existing Documentation to Update", it.DocsImpact.UpdateExisting)
		mdList(ew, "#### New Documentation to Create", it.DocsImpact.CreateNew)
		mdList(ew, "#### Suggested Content", it.DocsImpact.SuggestedContent)
	}
	return ew.err
}

func mdList(ew *errWriter, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	ew.printf("%s\n\n", heading)
	for _, it := range items {
		ew.printf("- %s\n", it)
	}
	ew.printf("\n")
}
