// Package version provides build information for the pointclick engine.
package version

// Version is the current release version.
// Override at build time with:
//
//	go build -ldflags "-X github.com/AaronLay10/pointclick/internal/version.Version=x.y.z"
var Version = "0.3.0"
