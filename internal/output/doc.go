// Package output formats documentation-impact reports.
//
// Four formats are supported:
//   - markdown: the full report document (default)
//   - text: a compact terminal rendering
//   - json: the structured report, one entry per analyzed change-set
//   - html: the markdown document rendered with goldmark and sanitized
//
// Use [GetWriter] to obtain a [Writer] for a format name, or [WriteReport]
// to resolve the destination (stdout, a file, or a timestamped file in a
// directory) as well.
package output
