package analysis

import "github.com/dshills/docimpact/internal/changes"

// DocsImpact lists the documentation work a change-set implies.
type DocsImpact struct {
	UpdateExisting   []string `json:"update_existing"`
	CreateNew        []string `json:"create_new"`
	SuggestedContent []string `json:"suggested_content"`
}

// Verdict is the classification of one change-set.
type Verdict struct {
	UserFacing bool       `json:"user_facing"`
	DocsImpact DocsImpact `json:"docs_impact"`
	Reasoning  string     `json:"reasoning"`
}

// AnnotatedVerdict is a Verdict tagged with the change-set it describes.
// Error is set when classification failed; UserFacing is then false.
type AnnotatedVerdict struct {
	Number int    `json:"pr_number"`
	Title  string `json:"pr_title"`
	URL    string `json:"pr_url"`
	// Author and MergedAt (RFC 3339, UTC) are empty when unknown.
	Author   string `json:"pr_author,omitempty"`
	MergedAt string `json:"merged_at,omitempty"`
	Verdict
	Error string `json:"error,omitempty"`
}

// Failed reports whether classification of the change-set failed.
func (a AnnotatedVerdict) Failed() bool { return a.Error != "" }

// Annotate attaches change-set metadata to v.
func Annotate(d changes.Detail, v Verdict) AnnotatedVerdict {
	return AnnotatedVerdict{
		Number:   d.Number,
		Title:    d.Title,
		URL:      d.URL,
		Author:   d.Author,
		MergedAt: d.MergedAtISO(),
		Verdict:  v.normalized(),
	}
}

// FailedVerdict is the verdict recorded when classifying d returned err.
func FailedVerdict(d changes.Detail, err error) AnnotatedVerdict {
	msg := err.Error()
	a := Annotate(d, Verdict{Reasoning: "Error: " + msg})
	a.Error = msg
	return a
}

// normalized replaces nil lists with empty ones so JSON output carries []
// instead of null.
func (v Verdict) normalized() Verdict {
	if v.DocsImpact.UpdateExisting == nil {
		v.DocsImpact.UpdateExisting = []string{}
	}
	if v.DocsImpact.CreateNew == nil {
		v.DocsImpact.CreateNew = []string{}
	}
	if v.DocsImpact.SuggestedContent == nil {
		v.DocsImpact.SuggestedContent = []string{}
	}
	return v
}
