// Package engine drives one invocation of the external speech-to-text
// program.
//
// A Supervisor spawns the engine with its stdout and stderr merged, then
// polls on a fixed interval: it enforces the wall-clock timeout, drains the
// output without blocking, streams the text into the job's status message
// with throttled edits, splits the transcript into continuation messages
// when it outgrows the message limit, and reaps the child once it exits.
// Every invocation ends with exactly one final edit.
package engine
