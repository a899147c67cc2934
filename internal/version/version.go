// Package version provides build and version information for Storyline Engine.
package version

// Version is the current release version of Storyline Engine.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/hollowpine/StorylineEngine/internal/version.Version=x.y.z"
var Version = "0.3.0"
