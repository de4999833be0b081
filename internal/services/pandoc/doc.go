// Package pandoc wraps the pandoc CLI as the pipeline's markup to typeset
// converter. Content travels over standard input and output; the executor is
// injectable so tests never need the real binary.
package pandoc
