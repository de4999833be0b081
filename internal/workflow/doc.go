// Package workflow drives the chapter pipeline.
//
// The Manager turns configuration into a stagecache graph: per chapter it
// registers download, extract, fixmarkup, convert and fixtypeset tasks, then
// aggregate, render and verify once for the whole document. Build runs the
// graph under an exclusive lock on the artifact directory, stamps a run id
// into every log line, and publishes a failure notification when a task
// fails. Status, Forget and Clean inspect and reset the same graph; ImportPages
// seeds raw downloads and Verify rechecks the composite on its own.
package workflow
