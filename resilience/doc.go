// Package resilience guards calls to the language-model backend.
//
//   - Retry: re-issues failed calls with exponential backoff
//   - CircuitBreaker: fails fast once the backend keeps failing
//   - Bulkhead: caps concurrent calls so a full analysis fan-out cannot
//     overwhelm a local model server
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("ollama"))
//	out, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (string, error) {
//	    var s string
//	    err := cb.Execute(func() error { s, err = call(ctx); return err })
//	    return s, err
//	})
package resilience
