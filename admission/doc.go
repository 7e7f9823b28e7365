// Package admission bounds how many transcription jobs the service holds at
// once and serializes access to the transcription engine.
//
// A Counter admits at most Capacity jobs; a job is counted from the moment it
// is admitted until it releases, whether it is waiting for the engine or
// running on it. An EngineLock lets exactly one admitted job drive the engine
// at a time. A Controller bundles one of each and is owned by the service
// that handles jobs; there are no package-level instances.
package admission
