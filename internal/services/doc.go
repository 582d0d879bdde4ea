// Package services defines shared utilities consumed by the acquisition
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, source identifiers, and content
//     categories for logging.
//   - Structured error markers plus the Wrap helper that let callers classify
//     upstream failures (rate limiting, capability negotiation, cancellation)
//     without string matching.
//
// Use these helpers when wiring new pipeline steps so operational behaviour
// (error handling, observability, retries) stays uniform.
package services
