// Package stage names the pipeline steps, classifies their failures, and
// holds the structural postconditions each step enforces on its own output.
package stage
