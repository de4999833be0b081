// Package aggregate concatenates per-chapter typeset fragments between the
// document preamble and postamble.
package aggregate
