// Package transcriber runs the lifecycle of one transcription job, from the
// inbound attachment to the final status message.
//
// Service.Handle is called once per inbound request, concurrently. It
// classifies the attachment, takes an admission slot, materializes and
// converts the audio, queues for the engine and supervises it. Whatever
// happens, the slot and the engine lock are released, the temporary files
// are removed, and the user sees exactly one terminal message.
package transcriber
