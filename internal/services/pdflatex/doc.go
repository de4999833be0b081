// Package pdflatex wraps the pdflatex CLI as the pipeline's renderer. The
// engine reads the composite source from the artifact directory and writes
// <job>.pdf next to it; batch interaction keeps it from prompting on errors.
package pdflatex
