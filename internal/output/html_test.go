package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/docimpact/internal/analysis"
	"github.com/dshills/docimpact/internal/report"
)

func TestHTMLWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&HTMLWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Documentation Update Report for owner/repo</title>",
		"<h1>Documentation Update Report for owner/repo</h1>",
		"<li>docs/api.md</li>",
		"<h3>PR #1: Add new feature</h3>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestHTMLWriter_SanitizesModelText(t *testing.T) {
	r := sampleReport()
	r.UserFacing[0].Reasoning = `<script>alert("x")</script>looks fine`
	r.Suggestions = append(r.Suggestions, report.Suggestion{ChangeNumber: 1, Text: `<img src=x onerror="alert(1)">`})
	r.UserFacing = append(r.UserFacing, analysis.AnnotatedVerdict{Number: 9, Title: "<b onclick=\"x()\">bold</b>", Verdict: analysis.Verdict{UserFacing: true}})

	var buf bytes.Buffer
	if err := (&HTMLWriter{}).Write(&buf, r); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, bad := range []string{"<script", "onerror", "onclick"} {
		if strings.Contains(out, bad) {
			t.Errorf("output contains %q:\n%s", bad, out)
		}
	}
}
