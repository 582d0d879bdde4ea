// Package history persists a log of processed requests in SQLite.
//
// Each fetch run records one Entry (request id, video, category, language,
// whether the cache answered, and the outcome label). The CLI reads recent
// entries back for the history command. Writes retry briefly when SQLite
// reports the database as busy so concurrent fetches can share one file.
package history
