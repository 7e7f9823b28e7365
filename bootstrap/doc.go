// Package bootstrap runs a service's lifecycle.
//
// An App validates the typed configuration, builds the logger, starts the
// registered components in order, runs the start/configure/ready hooks and
// prints a startup summary. It then blocks until SIGINT or SIGTERM and stops
// everything in reverse within the graceful timeout.
package bootstrap
