// Package httpserver provides the HTTP/HTTPS server for nsi-dds.
//
// It is built on net/http. NewRouter wires the DDS handler behind the
// middleware chain (request ID, panic recovery, audit logging, metrics,
// and on the notification route the peer allow list, rate limiting and
// body size limit).
package httpserver
