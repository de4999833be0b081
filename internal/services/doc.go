// Package services defines shared utilities consumed by the pipeline stages
// and the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and chapter ordinals
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     as fetch, extraction, conversion, render, or verification errors.
//   - A thin Executor abstraction that makes external process invocation
//     (converter, renderer, browser) testable.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services
