// Package textutil provides small text helpers shared across the pipeline:
// sequence similarity for confidence scoring, token sanitation for lock file
// names, and software-name normalization for cache keys.
package textutil
