// Package normalize is the text rule engine behind the two normalization
// stages. Rule sets are plain values built from a corrections table and passed
// to callers explicitly; nothing here holds package-level mutable state.
package normalize
