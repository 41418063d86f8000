// Package parse extracts structured software information from release
// filenames and folder names: product name, version, vendor, release year,
// and portable-build detection.
package parse
