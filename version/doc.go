// Package version reports the build version of the minutes binaries.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/minutes/version.Version=1.2.0 \
//	  -X github.com/kbukum/minutes/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/minutes
//
// Missing values fall back to the module build info embedded by the Go
// toolchain.
package version
