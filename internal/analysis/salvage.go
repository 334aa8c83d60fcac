package analysis

import "strings"

// SalvageReasoning is the reasoning attached to a salvaged verdict.
const SalvageReasoning = "Extracted from non-JSON response"

const salvageKeyword = "documentation"

// Salvage is the last recovery tier, used when no JSON object could be read
// from a model response. The verdict is user-facing with empty document
// lists.
//
// As a separate heuristic step, every ". "-delimited sentence of raw that
// mentions "documentation" (any case) is kept, trimmed, as suggested
// content.
func Salvage(raw string) Verdict {
	v := Verdict{
		UserFacing: true,
		Reasoning:  SalvageReasoning,
	}.normalized()
	v.DocsImpact.SuggestedContent = append(v.DocsImpact.SuggestedContent, documentationSentences(raw)...)
	return v
}

// documentationSentences implements the keyword heuristic used by Salvage.
func documentationSentences(raw string) []string {
	if !strings.Contains(strings.ToLower(raw), salvageKeyword) {
		return nil
	}
	var out []string
	for _, sentence := range strings.Split(raw, ". ") {
		if strings.Contains(strings.ToLower(sentence), salvageKeyword) {
			out = append(out, strings.TrimSpace(sentence))
		}
	}
	return out
}
