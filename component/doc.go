// Package component defines the lifecycle contract shared by the long-lived
// parts of whisperbot: the transcriber, the chat store and the HTTP server.
//
// A Registry starts components in registration order, stops them in reverse
// and aggregates their health for the /health endpoint.
package component
