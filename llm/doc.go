// Package llm provides a config-driven client for chat-completion model
// backends, used to extract action items, decisions and summaries from
// meeting transcripts.
//
// The package provides:
//   - Universal types: [CompletionRequest], [CompletionResponse], [Message], [Usage]
//   - [Completer], the one-method interface analysis code depends on
//   - [Dialect]: maps universal types to and from a backend's HTTP format
//   - [Adapter]: net/http plus a Dialect, guarded by retry, circuit breaker and bulkhead
//   - Dialect registry: [RegisterDialect] / [GetDialect] for config-driven selection
//   - Convenience helpers: [Complete], [CompleteJSON]
//
// # Usage
//
// Import a dialect package for side-effect registration, then create an adapter:
//
//	import (
//	    "github.com/kbukum/minutes/llm"
//	    _ "github.com/kbukum/minutes/llm/ollama"
//	)
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "ollama",
//	    BaseURL: "http://localhost:11434",
//	    Model:   "qwen2.5:1.5b",
//	})
//
//	text, err := llm.Complete(ctx, adapter, "You are a meeting analyst.", prompt)
package llm
