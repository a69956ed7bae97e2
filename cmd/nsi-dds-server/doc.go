// Package main provides the entry point for nsi-dds-server.
//
// The server accepts NSI Document Distribution Service notifications
// over HTTP(S):
//
//   - POST /dds/notifications decodes a notifications document, logs it
//     and appends a record to the inbox
//   - GET /dds/notifications and /dds/notifications/{id} read the inbox
//   - GET /dds/ping, /health and /ready for probes
//   - GET /metrics for Prometheus
//
// Usage:
//
//	nsi-dds-server [flags]
//	nsi-dds-server -config /etc/nsi-dds/server.yaml
//
// Environment variables prefixed with NSIDDS_ override the file, with
// "__" separating levels, e.g. NSIDDS_LOG__LEVEL=debug.
package main
