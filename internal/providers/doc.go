// Package providers implements the Completer interface for each supported
// language model provider used to classify change-sets.
//
// Supported providers: OpenAI (default), Anthropic (Claude), Google (Gemini),
// and Ollama / LM Studio for local models.
//
// All providers share postJSON for status classification and a retry helper
// built on cenkalti/backoff that retries rate limits and 5xx responses with
// exponential back-off. Authentication failures are never retried and can be
// detected with [IsAuthError].
//
// Use [New] to obtain a Completer by provider name and model string.
package providers
