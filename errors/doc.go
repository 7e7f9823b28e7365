// Package errors provides the structured error type used across whisperbot.
//
// Every terminal job failure is an *AppError whose Code identifies the
// failure class and whose Message is the fixed text shown to the requester.
// The HTTP transport renders the same value through ToResponse.
package errors
