// Package buildinfo provides build-time version information.
//
// Values are injected at build time via ldflags:
//
//	go build -ldflags "-X github.com/esnet/nsi-dds-go/internal/infra/buildinfo.Version=v1.0.0"
//
// GoVersion and, when not injected, Commit fall back to the module build
// information embedded by the toolchain.
package buildinfo
