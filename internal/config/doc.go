// Package config loads and merges docimpact configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GITHUB_TOKEN, DOCIMPACT_MODEL, OPENAI_MODEL, etc.),
//     including those supplied by a .env file in the working directory
//  3. Config file ($XDG_CONFIG_HOME/docimpact/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [Validate] to reject a run
// whose credentials are missing before any network call is made.
package config
