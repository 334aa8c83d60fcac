// Docimpact is a CLI that finds the merged pull requests of a GitHub
// repository that change user-facing behavior and reports the
// documentation they affect.
//
// It classifies each change with an LLM provider and emits a Markdown, text,
// JSON, or HTML report with deterministic exit codes suitable for CI gating.
//
// Usage:
//
//	docimpact analyze owner/repo                      # since the latest release
//	docimpact analyze owner/repo --since 2024-03-01   # since a date
//	docimpact analyze --release-tag v1.4.0            # repo from the origin remote
//	docimpact analyze owner/repo --format json --out report.json
//	docimpact models doctor                           # check provider credentials
//
// See https://github.com/dshills/docimpact for full documentation.
package main
