// Package cli wires together the Cobra command tree for the docimpact binary.
//
// It defines the root command and its subcommands (analyze, config, models,
// cache, version), binds flags, reads configuration, runs the analysis
// pipeline, and returns deterministic exit codes for CI gating.
package cli
