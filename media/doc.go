// Package media decides whether an inbound attachment is audio, probes its
// duration, converts it to the waveform the engine reads, and names the
// temporary files a job works with.
package media
