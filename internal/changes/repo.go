package changes

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/docimpact/internal/gitctx"
)

// ErrInvalidRepoRef is wrapped by ParseRepoRef failures.
var ErrInvalidRepoRef = errors.New("invalid repository reference")

var (
	httpsRemoteRe = regexp.MustCompile(`^(?:https?://)?[^/@\s]+\.[^/@\s]+/([^/\s]+)/([^/\s]+?)/?$`)
	sshRemoteRe   = regexp.MustCompile(`^(?:ssh://)?[^@\s]+@[^:/\s]+[:/]([^/\s]+)/([^/\s]+?)/?$`)
	shortRefRe    = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
)

// ParseRepoRef accepts "owner/repo", "github.com/owner/repo",
// "https://github.com/owner/repo" and SSH remotes, each with or without a
// trailing ".git".
func ParseRepoRef(ref string) (Repo, error) {
	s := strings.TrimSpace(ref)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")

	var owner, name string
	switch {
	case shortRefRe.MatchString(s) && !strings.Contains(strings.SplitN(s, "/", 2)[0], "."):
		m := shortRefRe.FindStringSubmatch(s)
		owner, name = m[1], m[2]
	case sshRemoteRe.MatchString(s):
		m := sshRemoteRe.FindStringSubmatch(s)
		owner, name = m[1], m[2]
	case httpsRemoteRe.MatchString(s):
		m := httpsRemoteRe.FindStringSubmatch(s)
		owner, name = m[1], m[2]
	default:
		return Repo{}, fmt.Errorf("%w: %q", ErrInvalidRepoRef, ref)
	}
	if owner == "" || name == "" {
		return Repo{}, fmt.Errorf("%w: %q", ErrInvalidRepoRef, ref)
	}
	return Repo{Owner: owner, Name: name}, nil
}

// DetectRepoRef returns the origin remote URL of the working directory's
// git repository, for use when no reference is given on the command line.
func DetectRepoRef() (string, error) {
	url, err := gitctx.OriginURL()
	if err != nil {
		return "", fmt.Errorf("cannot detect repository: %w", err)
	}
	return url, nil
}
