// Package version reports the whisperbot build.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/whisperbot/version.Version=1.2.0"
//
// Missing values fall back to the module's embedded VCS settings.
package version
