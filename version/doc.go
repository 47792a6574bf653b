// Package version reports build information for the tashkeel binary and
// server. Values are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/tashkeel/version.Version=1.0.0" ./cmd/tashkeel
package version
