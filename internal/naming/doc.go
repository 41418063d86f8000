// Package naming checks release filenames against the library's naming
// rules and produces rename suggestions for violations.
package naming
