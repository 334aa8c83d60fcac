// Package redact removes secrets from change-set content before it is sent
// to any model provider or written to the response cache.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS credentials, bearer tokens, connection strings
// with inline passwords, and provider-specific tokens (Anthropic, OpenAI,
// Google, GitHub, Slack).
//
// Path-based redaction works on unified diffs: a file whose path matches a
// configured glob keeps only its "diff --git" header line.
package redact
