// Package llm wraps the language model text completion service.
//
// Any OpenAI-compatible chat completions endpoint works, including a local
// Ollama instance. Every failure to obtain a completion is reported as
// ErrUnavailable so callers can tell infrastructure outages apart from
// answers they merely cannot use.
package llm
