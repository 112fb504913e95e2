// Package server exposes the meeting-processing operations over HTTP.
//
// The gin engine sits behind an h2c handler so HTTP/2 clients can connect
// without TLS. A net/http middleware chain (server/middleware) wraps the
// whole handler: recovery, request IDs, CORS, body size limit, optional
// rate limit and request logging.
//
// # Endpoints
//
//   - GET  /health, /ready, /alive: aggregated and probe health
//   - GET  /info, /metrics: build and runtime information
//   - POST /v1/turns: word tokens to speaker turns
//   - POST /v1/action-items, /v1/commitments: attribute raw model output
//   - POST /v1/speakers/relabel: rename speakers in a transcript or record
//   - POST /v1/analyze, /v1/query: model-backed meeting analysis
//   - GET  /v1/transcripts, /v1/transcripts/:key: stored transcript records
package server
