// Package util provides small generic helpers shared across packages:
// slice operations, human-readable size parsing and secret masking.
package util
