// Package testsupport provides shared fixtures for package tests: temp-dir
// configs, catalog stores, and library file helpers.
package testsupport
