// Package github implements changes.Platform on the GitHub REST API using
// go-github.
//
// Requests go through an in-memory ETag cache and a secondary rate limit
// middleware. Merged pull requests are found with the issue search API;
// each one is then expanded with its metadata, unified diff and changed
// file list.
package github
