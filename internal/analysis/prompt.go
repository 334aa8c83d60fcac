package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dshills/docimpact/internal/changes"
)

// DefaultMaxDiffChars bounds the diff sent with each change-set.
const DefaultMaxDiffChars = 10000

const systemPrompt = `You are a documentation specialist reviewing merged pull requests. For each pull request decide:

1. Whether it contains end-user facing changes. A change is user-facing when it affects the people who use the finished product, not the developers who build it.

   User-facing, for example:
   - CLI commands, flags or arguments
   - configuration file formats or options
   - APIs that users call directly
   - new or changed features users interact with
   - error messages shown to users
   - user documentation

   Not user-facing, for example:
   - internal refactoring, cleanup or formatting
   - developer documentation
   - test changes
   - CI/CD pipeline changes
   - internal logging
   - performance or security fixes that need no user action

2. The documentation impact, for user-facing changes only:
   - existing user documentation that must be updated
   - new user documentation that should be written
   - suggested content for those updates

Use the title, description, changed files and diff. If a change is purely internal, mark it as not user-facing.

Respond with ONLY a JSON object of this shape and no text outside it:
{
  "user_facing": true,
  "docs_impact": {
    "update_existing": ["existing docs to update"],
    "create_new": ["new docs to create"],
    "suggested_content": ["content to add or change"]
  },
  "reasoning": "brief explanation of why the change is or is not user-facing"
}`

// SystemPrompt returns the classification instruction. Extra instructions
// and the policy, when present, follow under "Additional instructions:".
func SystemPrompt(extra string, policy *Policy) string {
	var parts []string
	if s := strings.TrimSpace(extra); s != "" {
		parts = append(parts, s)
	}
	if s := policy.PromptSection(); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return systemPrompt
	}
	return systemPrompt + "\n\nAdditional instructions:\n" + strings.Join(parts, "\n")
}

// BuildUserMessage renders one change-set for the classifier. The diff is
// cut to at most maxDiffChars characters; non-positive means
// DefaultMaxDiffChars.
func BuildUserMessage(d changes.Detail, maxDiffChars int) string {
	if maxDiffChars <= 0 {
		maxDiffChars = DefaultMaxDiffChars
	}
	diff, truncated := TruncateRunes(d.Diff, maxDiffChars)

	files := d.ChangedFiles
	if files == nil {
		files = []string{}
	}
	filesJSON, _ := json.MarshalIndent(files, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Pull Request #%d: %s\n\n", d.Number, d.Title)
	b.WriteString("Description:\n")
	b.WriteString(d.Description)
	b.WriteString("\n\nChanged Files:\n")
	b.Write(filesJSON)
	b.WriteString("\n\nDiff:\n```diff\n")
	b.WriteString(diff)
	if !strings.HasSuffix(diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	if truncated {
		fmt.Fprintf(&b, "(diff truncated to the first %d characters)\n", maxDiffChars)
	}
	b.WriteString("\nDecide whether this pull request contains user-facing changes and what documentation updates it needs.\n")
	return b.String()
}

// TruncateRunes returns the first n characters of s and whether anything
// was cut. It never splits a UTF-8 sequence.
func TruncateRunes(s string, n int) (string, bool) {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], true
		}
		i++
	}
	return s, false
}
