// Package process runs external programs in their own process group.
//
// Run executes a short-lived tool to completion and captures its output.
// Start launches a long-running child whose stdout and stderr are merged into
// one stream that the caller drains without blocking, while it polls for exit
// and kills the whole group when it needs to.
package process
