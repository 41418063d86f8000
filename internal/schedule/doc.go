// Package schedule runs unattended scans on a cron expression.
//
// Each tick scans every configured library root, isolating per-root
// failures, and then auto-matches the unresolved scanned entries when the
// AI provider is enabled. The scheduler keeps the last run's time and
// aggregated result around for status reporting.
package schedule
