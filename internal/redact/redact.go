package redact

import (
	"regexp"
	"strings"

	"github.com/dshills/docimpact/internal/gitctx"
)

const placeholder = "[REDACTED]"

// pathNotice replaces the body of a file section withheld by path policy.
const pathNotice = placeholder + " (file content redacted by path policy)\n"

// secretPatterns are regex heuristics for common secret types.
var secretPatterns = []*regexp.Regexp{
	// Generic API keys (long hex/base64 strings after common key patterns)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// secret/token/password assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// GitHub tokens, classic and fine-grained
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,}`),
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	// Google API keys
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	// connection strings with inline credentials
	regexp.MustCompile(`(?i)\b(postgres|postgresql|mysql|mongodb(\+srv)?|redis|amqp)://[^\s:/@]+:[^\s@]+@`),
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// Policy controls what is removed from change content before it leaves the
// process. The zero value redacts nothing.
type Policy struct {
	Secrets bool
	// Paths are glob patterns; matching files have their whole diff
	// section withheld.
	Paths []string
}

// Text applies secret redaction to free text such as a change description.
func (p Policy) Text(s string) string {
	if !p.Secrets {
		return s
	}
	return Secrets(s)
}

// Diff redacts a unified diff. Sections for files matching Paths keep their
// "diff --git" header and lose everything else; the remaining text is
// scanned for secrets when enabled.
func (p Policy) Diff(diff string) string {
	if !p.Secrets && len(p.Paths) == 0 {
		return diff
	}
	var b strings.Builder
	for _, sec := range gitctx.Sections(diff) {
		text := sec.Text
		if sec.Path != "" && ShouldRedactPath(sec.Path, p.Paths) {
			text = headerLine(text) + pathNotice
		} else if p.Secrets {
			text = Secrets(text)
		}
		b.WriteString(text)
	}
	return b.String()
}

// ShouldRedactPath reports whether path matches a redaction pattern.
func ShouldRedactPath(path string, patterns []string) bool {
	return gitctx.MatchesAny(path, patterns)
}

func headerLine(section string) string {
	if i := strings.IndexByte(section, '\n'); i >= 0 {
		return section[:i+1]
	}
	return section + "\n"
}
