// Package analysis classifies merged change-sets as user-facing or not and
// records which documentation each one affects.
//
// A [Classifier] sends one change-set at a time to a language model
// provider, throttled by a ratelimit.Limiter, and turns whatever comes back
// into a [Verdict]. Model output is untrusted: [Parse] never fails. It tries,
// in order, the whole response as JSON, a ```json fenced block, and the span
// from the first "{" to the last "}". When none yields a valid verdict,
// [Salvage] produces a conservative default.
//
// Classifier failures are data, not errors: an [AnnotatedVerdict] with a
// non-empty Error field is marked not user-facing so one bad response never
// aborts a run.
package analysis
