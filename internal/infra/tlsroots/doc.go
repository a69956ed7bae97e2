// Package tlsroots builds the TLS configuration of the notification
// endpoint and of the ddsctl client.
//
//   - roots.go: trust pools loaded from PEM files and directories, and
//     client authentication modes for DDS peers
//   - watcher.go: the server certificate, reloaded when its files change
package tlsroots
