// Package server is the HTTP front of whisperbot: a Gin engine mounted on
// a ServeMux and served with h2c, so HTTP/1.1 and cleartext HTTP/2 clients
// share one port.
//
// # Middleware
//
// Handler-level middleware (server/middleware) wraps every request:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: cross-origin headers and preflight
//   - BodySizeLimit: request body limit
//   - RequestLogger: method, path, status and duration
//
// Auth and RateLimit are Gin middleware applied per route group.
//
// # Endpoints
//
// server/endpoint provides /healthz, /livez and /version.
package server
