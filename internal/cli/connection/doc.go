// Package connection provides the HTTP client ddsctl uses to talk to an
// nsi-dds-server.
//
// Connections are pooled per host. TLS settings come from the global
// --ca-file, --cert and --key flags. Error responses carry an ErrorType
// XML body, which is decoded into an *APIError.
package connection
