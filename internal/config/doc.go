// Package config loads, normalizes, and validates quire configuration data.
//
// It supplies defaults that reproduce the reference build (thirteen chapters,
// pandoc, two pdflatex passes), expands user paths including tilde shortcuts,
// reads TOML files, and honours the QUIRE_NTFY_TOPIC environment fallback.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and canonical enum values.
package config
