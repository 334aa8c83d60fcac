// Package cache stores raw model responses on disk so a re-run over the
// same change-sets skips the provider.
//
// Keys are a SHA-256 of the provider name, model, and the redacted system
// and user prompts. Each entry records its creation time; entries older
// than the TTL are skipped on read. Caching is off unless enabled in
// configuration.
package cache
