// Package preflight provides readiness checks for the filesystem paths and
// external binaries a build depends on.
//
// The CLI "quire check" command runs RunAll and CheckSystemDeps and prints
// one row per result. Build does not call these checks; a missing binary or
// boilerplate file surfaces as a stage failure instead.
package preflight
