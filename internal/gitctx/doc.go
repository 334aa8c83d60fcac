// Package gitctx holds the small amount of local git and unified-diff
// handling docimpact needs: reading the origin remote to infer the
// repository under analysis, and splitting a diff into per-file sections
// so redaction can act on whole files.
package gitctx
