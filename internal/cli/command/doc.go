// Package command defines the ddsctl commands using urfave/cli/v2:
//
//   - root.go: application, global flags and shared helpers
//   - ping.go: liveness check against /dds/ping
//   - notify.go: post a notifications document
//   - inbox.go: read the server's notification inbox
//   - decode.go: decode a document locally
package command
