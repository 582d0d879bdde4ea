// Package textutil provides small text helpers shared by the cache, the
// orchestrator, and the CLI.
//
// The primary use cases are:
//   - Deriving stable SHA-256 digests for content-addressed names
//   - Turning video identifiers into filesystem-safe tokens
//   - Reducing video titles to safe display file names
package textutil
