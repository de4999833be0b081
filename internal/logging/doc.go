// Package logging assembles structured slog loggers for the build pipeline.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code tags log lines
// with the run ID, stage name, and chapter ordinal without repeating them at
// every call site. The console handler lifts component, stage, and chapter
// into a bracketed prefix so a per-chapter run stays readable in a terminal.
package logging
