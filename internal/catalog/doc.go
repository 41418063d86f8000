// Package catalog persists the software library: products and their
// versions, the scan ledger, the review queue, and the metadata cache, all
// backed by a single SQLite database.
package catalog
