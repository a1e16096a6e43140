// Package nlp provides language model clients for answer synthesis.
//
// The Client interface exposes chat completions only: it carries no tool or
// function-calling parameters, which keeps the single-call generation
// contract enforceable at the type level.
//
// Wrappers compose around any Client:
//
//	client, _ := nlp.NewOpenAIClient(apiKey, nlp.Config{Model: "gpt-4o-mini"})
//	retried := nlp.NewRetryClient(client, nlp.DefaultRetryConfig())
//	guarded := nlp.NewCircuitBreakerClient(retried, cbConfig, logger, "completion")
//
// RetryClient retries only rate-limit and transient provider failures, with
// exponential backoff cancellable through the caller's context. Validation
// errors and other 4xx failures surface immediately.
package nlp
