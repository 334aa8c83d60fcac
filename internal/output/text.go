package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/docimpact/internal/report"
)

// TextWriter outputs a plain-text report for terminals.
type TextWriter struct{}

func (t *TextWriter) Ext() string { return "txt" }

func (t *TextWriter) Write(w io.Writer, r *report.Report) error {
	ew := &errWriter{w: w}

	ew.printf("Documentation impact: %s\n", r.RepoRef)
	ew.printf("Since %s, generated %s\n", r.Since.Format("2006-01-02"), r.GeneratedAt.Format("2006-01-02 15:04:05"))
	ew.println(strings.Repeat("─", 60))
	ew.printf("Change-sets: %d analyzed, %d user-facing", r.TotalCount, r.UserFacingCount)
	if failed := r.FailedCount(); failed > 0 {
		ew.printf(", %d failed", failed)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if !r.HasUserFacing() {
		ew.printf("\n%s\n", r.Message)
		return ew.err
	}

	textList(ew, "Update existing docs", r.UpdateExisting)
	textList(ew, "Create new docs", r.CreateNew)
	if len(r.Suggestions) > 0 {
		ew.printf("\nSuggested content\n")
		for _, s := range r.Suggestions {
			lines := wrapText(s.Text, 66)
			ew.printf("  #%-5d %s\n", s.ChangeNumber, lines[0])
			for _, line := range lines[1:] {
				ew.printf("         %s\n", line)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	for _, it := range r.UserFacing {
		ew.printf("\n#%d %s\n", it.Number, it.Title)
		if it.URL != "" {
			ew.printf("  %s\n", it.URL)
		}
		for _, line := range wrapText(it.Reasoning, 70) {
			ew.printf("    %s\n", line)
		}
	}
	return ew.err
}

func textList(ew *errWriter, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	ew.printf("\n%s\n", heading)
	for _, it := range items {
		ew.printf("  - %s\n", it)
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 || len(lines) == 0 {
		lines = append(lines, current.String())
	}
	return lines
}
