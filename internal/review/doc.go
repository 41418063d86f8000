// Package review manages the operator queue for low-confidence matches.
//
// Items land here when the auto-matcher is not confident enough to register
// a folder on its own. Operators either approve the suggested metadata,
// supply their own, or ignore the item. Approve and manual decisions
// materialize the catalog through the matcher and seed the metadata cache so
// the same software name never goes back to the provider.
package review
