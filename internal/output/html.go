package output

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dshills/docimpact/internal/report"
)

var (
	mdRenderer    = goldmark.New(goldmark.WithExtensions(extension.GFM))
	htmlSanitizer = bluemonday.UGCPolicy()
)

// HTMLWriter renders the markdown report to a standalone HTML page. Model
// text ends up in the page, so the rendered body is sanitized.
type HTMLWriter struct{}

func (h *HTMLWriter) Ext() string { return "html" }

func (h *HTMLWriter) Write(w io.Writer, r *report.Report) error {
	var md bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&md, r); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := mdRenderer.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}

	ew := &errWriter{w: w}
	ew.printf("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	ew.printf("<title>Documentation Update Report for %s</title>\n", html.EscapeString(r.RepoRef))
	ew.printf("</head>\n<body>\n")
	ew.printf("%s", htmlSanitizer.SanitizeBytes(body.Bytes()))
	ew.printf("</body>\n</html>\n")
	return ew.err
}
