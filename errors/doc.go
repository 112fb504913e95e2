// Package errors provides the structured error type used at the API
// boundaries of minutes.
//
// The processing core itself degrades instead of failing: malformed model
// output becomes an empty result and missing attribution becomes a sentinel.
// AppError is reserved for caller-contract violations (bad thresholds,
// unordered tokens, invalid request bodies) and collaborator failures.
package errors
