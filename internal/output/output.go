package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/docimpact/internal/report"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, r *report.Report) error
	// Ext is the file extension used when the report is written to a
	// directory.
	Ext() string
}

// Formats lists the supported format names.
var Formats = []string{"markdown", "text", "json", "html"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "html":
		return &HTMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ReportFilename returns docimpact_<repo>_<YYYYMMDD_HHMMSS>.<ext> where repo
// is the last path segment of repoRef.
func ReportFilename(repoRef string, at time.Time, ext string) string {
	name := strings.TrimSuffix(strings.Trim(repoRef, "/"), ".git")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "repo"
	}
	return fmt.Sprintf("docimpact_%s_%s.%s", name, at.Format("20060102_150405"), ext)
}

// Destination selects where a report goes. With neither field set the
// report is written to stdout.
type Destination struct {
	// Path is an explicit output file.
	Path string
	// Dir receives a file named by ReportFilename. Ignored when Path is set.
	Dir string
}

// WriteReport writes r in format to dest and returns the path written, or
// "" for stdout.
func WriteReport(r *report.Report, format string, dest Destination) (string, error) {
	writer, err := GetWriter(format)
	if err != nil {
		return "", err
	}

	path := dest.Path
	if path == "" && dest.Dir != "" {
		if err := os.MkdirAll(dest.Dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
		at := r.GeneratedAt
		if at.IsZero() {
			at = time.Now()
		}
		path = filepath.Join(dest.Dir, ReportFilename(r.RepoRef, at, writer.Ext()))
	}

	if path == "" {
		return "", writer.Write(os.Stdout, r)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	if err := writer.Write(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing output file: %w", err)
	}
	return path, nil
}
