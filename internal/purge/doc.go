// Package purge signals downstream response caches after catalog changes.
//
// The default implementation posts key-glob patterns to the configured purge
// endpoint and gracefully degrades to a no-op when no endpoint is set. The
// signal is best-effort: callers log failures and keep going, because a stale
// listing cache is preferable to a failed match batch.
package purge
