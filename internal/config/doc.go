// Package config loads, normalizes, and validates the TOML configuration
// that drives the scan and auto-match pipeline.
package config
