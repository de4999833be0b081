// Package main hosts the quire CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds a
// workflow manager, and hands off to it: build runs the stage graph, status
// and list inspect it, forget and clean reset it, and cache import seeds raw
// pages. Rendering helpers for tables and status lines live here too.
//
// Keep this package lean: add behaviour to internal/workflow first and surface
// it through a command afterwards.
package main
