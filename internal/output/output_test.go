package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/docimpact/internal/analysis"
	"github.com/dshills/docimpact/internal/report"
)

func verdict(n int, title string, userFacing bool, update, create, suggest []string) analysis.AnnotatedVerdict {
	return analysis.AnnotatedVerdict{
		Number: n,
		Title:  title,
		URL:    "https://github.com/owner/repo/pull/" + string(rune('0'+n)),
		Verdict: analysis.Verdict{
			UserFacing: userFacing,
			Reasoning:  "Reasoning for " + title,
			DocsImpact: analysis.DocsImpact{
				UpdateExisting:   update,
				CreateNew:        create,
				SuggestedContent: suggest,
			},
		},
	}
}

func sampleReport() *report.Report {
	r := report.Build("owner/repo", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), []analysis.AnnotatedVerdict{
		verdict(1, "Add new feature", true,
			[]string{"docs/api.md"}, []string{"docs/new-feature.md"},
			[]string{"Add section on new authentication flow"}),
		verdict(2, "Fix bug", false, nil, nil, nil),
		verdict(3, "Update UI", true,
			[]string{"docs/ui.md", "docs/api.md"}, nil,
			[]string{"Update screenshots in UI documentation"}),
	})
	r.GeneratedAt = time.Date(2023, 2, 3, 4, 5, 6, 0, time.UTC)
	r.RunID = "run-1"
	return r
}

func emptyReport() *report.Report {
	r := report.Build("owner/repo", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	r.GeneratedAt = time.Date(2023, 2, 3, 4, 5, 6, 0, time.UTC)
	return r
}

func TestGetWriter(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"markdown", "md"},
		{"md", "md"},
		{"text", "txt"},
		{"json", "json"},
		{"html", "html"},
	}
	for _, tt := range tests {
		w, err := GetWriter(tt.format)
		if err != nil {
			t.Fatalf("GetWriter(%q) error: %v", tt.format, err)
		}
		if w.Ext() != tt.ext {
			t.Errorf("GetWriter(%q).Ext() = %q, want %q", tt.format, w.Ext(), tt.ext)
		}
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestReportFilename(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tests := []struct {
		ref  string
		want string
	}{
		{"owner/repo", "docimpact_repo_20240506_070809.md"},
		{"https://github.com/owner/repo.git", "docimpact_repo_20240506_070809.md"},
		{"owner/repo/", "docimpact_repo_20240506_070809.md"},
		{"", "docimpact_repo_20240506_070809.md"},
	}
	for _, tt := range tests {
		if got := ReportFilename(tt.ref, at, "md"); got != tt.want {
			t.Errorf("ReportFilename(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestWriteReport_Dir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteReport(sampleReport(), "json", Destination{Dir: dir})
	if err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	want := filepath.Join(dir, "docimpact_repo_20230203_040506.json")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), `"repository": "owner/repo"`) {
		t.Errorf("unexpected report content:\n%s", data)
	}
}

func TestWriteReport_PathWinsOverDir(t *testing.T) {
	tmp := t.TempDir()
	out := filepath.Join(tmp, "report.md")
	path, err := WriteReport(sampleReport(), "markdown", Destination{Path: out, Dir: filepath.Join(tmp, "unused")})
	if err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	if path != out {
		t.Errorf("path = %q, want %q", path, out)
	}
	if _, err := os.Stat(filepath.Join(tmp, "unused")); !os.IsNotExist(err) {
		t.Error("output directory should not be created when Path is set")
	}
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	if _, err := WriteReport(sampleReport(), "yaml", Destination{Dir: t.TempDir()}); err == nil {
		t.Error("expected error for unknown format")
	}
}
