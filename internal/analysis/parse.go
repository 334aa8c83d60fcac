package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Tier identifies which recovery step produced a verdict.
type Tier int

const (
	TierDirect Tier = iota + 1
	TierFenced
	TierBraces
	TierSalvage
)

func (t Tier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierFenced:
		return "fenced"
	case TierBraces:
		return "braces"
	case TierSalvage:
		return "salvage"
	default:
		return "unknown"
	}
}

// ErrInvalidVerdict is returned by DecodeVerdict when the JSON is well
// formed but lacks a required field.
var ErrInvalidVerdict = errors.New("invalid verdict")

const jsonFence = "```json"

// Parse turns raw model output into a Verdict. It never fails.
func Parse(raw string) Verdict {
	v, _ := ParseWithTier(raw)
	return v
}

// ParseWithTier is Parse, also reporting which tier succeeded. A tier that
// fails to decode and one that decodes but fails validation are treated
// alike: the next tier runs.
func ParseWithTier(raw string) (Verdict, Tier) {
	content := strings.TrimSpace(raw)

	if v, err := DecodeVerdict(content); err == nil {
		return v, TierDirect
	}
	if block, ok := fencedBlock(content); ok {
		if v, err := DecodeVerdict(block); err == nil {
			return v, TierFenced
		}
	}
	if span, ok := braceSpan(content); ok {
		if v, err := DecodeVerdict(span); err == nil {
			return v, TierBraces
		}
	}
	return Salvage(content), TierSalvage
}

// DecodeVerdict decodes s as a single JSON object and validates it:
// user_facing, docs_impact and reasoning are required, the docs_impact
// lists may be omitted. Keys must match exactly; encoding/json alone would
// accept "USER_FACING" for user_facing.
func DecodeVerdict(s string) (Verdict, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return Verdict{}, err
	}

	var missing []string
	for _, key := range []string{"user_facing", "docs_impact", "reasoning"} {
		if raw, ok := fields[key]; !ok || string(raw) == "null" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Verdict{}, fmt.Errorf("%w: missing %s", ErrInvalidVerdict, strings.Join(missing, ", "))
	}

	var v Verdict
	if err := json.Unmarshal(fields["user_facing"], &v.UserFacing); err != nil {
		return Verdict{}, fmt.Errorf("%w: user_facing: %v", ErrInvalidVerdict, err)
	}
	if err := json.Unmarshal(fields["reasoning"], &v.Reasoning); err != nil {
		return Verdict{}, fmt.Errorf("%w: reasoning: %v", ErrInvalidVerdict, err)
	}

	var impact map[string]json.RawMessage
	if err := json.Unmarshal(fields["docs_impact"], &impact); err != nil {
		return Verdict{}, fmt.Errorf("%w: docs_impact: %v", ErrInvalidVerdict, err)
	}
	lists := []struct {
		key string
		dst *[]string
	}{
		{"update_existing", &v.DocsImpact.UpdateExisting},
		{"create_new", &v.DocsImpact.CreateNew},
		{"suggested_content", &v.DocsImpact.SuggestedContent},
	}
	for _, l := range lists {
		raw, ok := impact[l.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, l.dst); err != nil {
			return Verdict{}, fmt.Errorf("%w: docs_impact.%s: %v", ErrInvalidVerdict, l.key, err)
		}
	}
	return v.normalized(), nil
}

// fencedBlock returns the trimmed text between the first ```json marker and
// the next ``` fence.
func fencedBlock(s string) (string, bool) {
	i := strings.Index(s, jsonFence)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(jsonFence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// braceSpan returns the text from the first "{" to the last "}" inclusive.
func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
