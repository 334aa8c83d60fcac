package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Documentation Update Report for owner/repo",
		"Generated on: 2023-02-03 04:05:06",
		"Analyzing PRs since: 2023-01-01",
		"Total PRs analyzed: 3",
		"PRs with user-facing changes: 2",
		"### Existing Documentation to Update\n\n- docs/api.md\n- docs/ui.md\n",
		"### New Documentation to Create\n\n- docs/new-feature.md\n",
		"### Suggested Content Updates\n\n- PR #1: Add section on new authentication flow\n- PR #3: Update screenshots in UI documentation\n",
		"### PR #1: Add new feature",
		"- URL: https://github.com/owner/repo/pull/1",
		"- User-facing: Yes",
		"- Reasoning: Reasoning for Add new feature",
		"#### Suggested Content\n\n- Add section on new authentication flow",
		"### PR #3: Update UI",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "### PR #2: Fix bug") {
		t.Error("non-user-facing change should not get a detail section")
	}
}

func TestMarkdownWriter_SectionOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	order := []string{
		"# Documentation Update Report",
		"Generated on:",
		"Analyzing PRs since:",
		"## Summary",
		"### Existing Documentation to Update",
		"### New Documentation to Create",
		"### Suggested Content Updates",
		"## Detailed PR Analysis",
		"### PR #1",
		"### PR #3",
	}
	last := -1
	for _, s := range order {
		i := strings.Index(out, s)
		if i <= last {
			t.Fatalf("%q out of order (index %d, previous %d)", s, i, last)
		}
		last = i
	}
}

func TestMarkdownWriter_NoUserFacing(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Total PRs analyzed: 0") {
		t.Error("expected zero total")
	}
	if !strings.Contains(out, "No user-facing changes detected in the analyzed PRs.") {
		t.Error("expected no-changes marker")
	}
	if strings.Contains(out, "## Documentation Updates Needed") {
		t.Error("updates section should be omitted")
	}
}

func TestMarkdownWriter_AuthorAndMergeTime(t *testing.T) {
	r := sampleReport()
	r.UserFacing[0].Author = "octocat"
	r.UserFacing[0].MergedAt = "2023-01-05T10:00:00Z"

	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, r); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "- Author: octocat\n- Merged: 2023-01-05T10:00:00Z\n") {
		t.Errorf("output missing author and merge time\n%s", out)
	}
	if strings.Count(out, "- Author:") != 1 {
		t.Errorf("author line should only appear when known\n%s", out)
	}
}
