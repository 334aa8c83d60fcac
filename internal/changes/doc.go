// Package changes resolves which merged change-sets of a repository fall
// inside an analysis window and fetches their details.
//
// The hosting platform is reached through the [Platform] port; the GitHub
// implementation lives in internal/github. A [Retriever] decides the
// window's lower bound ("since") with this precedence: an explicit date,
// the creation time of a named release tag, the latest release, and
// finally a fixed lookback from now. Boundary lookups never fail a run;
// each failure is logged and the next rule applies.
//
// Listing is capped (100 by default) and compares merge times with the
// boundary by calendar date in UTC, so a change merged at any time on the
// boundary day is included.
package changes
