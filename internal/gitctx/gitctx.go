package gitctx

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Section is the slice of a unified diff that belongs to one file.
type Section struct {
	Path string
	Text string
}

// OriginURL returns the fetch URL of the "origin" remote of the repository
// containing the working directory.
func OriginURL() (string, error) {
	out, err := gitOutput("remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("git remote get-url origin: %w", err)
	}
	url := strings.TrimSpace(out)
	if url == "" {
		return "", errors.New("origin remote has no URL")
	}
	return url, nil
}

// Sections splits a unified diff at each "diff --git" header. Text before
// the first header, if any, becomes a section with an empty path.
// Concatenating the Text of every section reproduces the input.
func Sections(diff string) []Section {
	if diff == "" {
		return nil
	}
	var sections []Section
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		text := current.String()
		sections = append(sections, Section{Path: sectionPath(text), Text: text})
		current.Reset()
	}
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git") {
			flush()
		}
		current.WriteString(line)
	}
	flush()
	return sections
}

// sectionPath returns the post-image path of a section, falling back to the
// pre-image path for deletions and to the header for binary or rename-only
// sections.
func sectionPath(section string) string {
	var oldPath, header string
	for _, line := range strings.Split(section, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ b/"):
			return strings.TrimPrefix(line, "+++ b/")
		case strings.HasPrefix(line, "--- a/"):
			oldPath = strings.TrimPrefix(line, "--- a/")
		case strings.HasPrefix(line, "diff --git ") && header == "":
			header = line
		}
	}
	if oldPath != "" {
		return oldPath
	}
	if i := strings.LastIndex(header, " b/"); i >= 0 {
		return header[i+len(" b/"):]
	}
	return ""
}

// Files returns the distinct paths touched by a unified diff in order of
// first appearance.
func Files(diff string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, s := range Sections(diff) {
		if s.Path == "" || seen[s.Path] {
			continue
		}
		seen[s.Path] = true
		files = append(files, s.Path)
	}
	return files
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// A leading "**/" matches at any depth.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean != pattern {
			matched, err = filepath.Match(clean, filepath.Base(path))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(clean, path)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
