// Package matcher turns unresolved ledger entries into catalog products and
// versions.
//
// A batch is filtered for split-archive parts, grouped by folder, gated on
// filename clarity, and materialized one folder at a time inside its own
// transaction so a bad folder never aborts the rest of the batch. Metadata
// comes from the operator (manual mode), the metadata cache, or the AI
// provider, in that order; synthesized metadata below the auto-accept
// confidence threshold is parked in the review queue instead of being
// written to the catalog.
package matcher
