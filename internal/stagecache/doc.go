// Package stagecache runs the build as a graph of file-producing tasks and
// skips tasks whose output is still fresh.
//
// A Task declares its input files, its single output file and a signature
// describing the transformation (for example a rule-set fingerprint). The
// Graph orders tasks by matching inputs to the tasks that produce them. The
// Checker applies one of three freshness policies: exists, mtime or hash.
// The hash policy compares against records kept in a Store, either SQLite
// (state survives between invocations) or memory.
//
// The Runner moves each planned task through pending, cached or running, and
// finally done or failed. The first failure aborts the run and leaves every
// earlier artifact in place so the next run resumes after it.
package stagecache
