// Package handler implements the DDS notification endpoints.
//
//   - GET  /dds/ping                  liveness, empty application/xml body
//   - POST /dds/notifications         accept a notification list, 202
//   - GET  /dds/notifications         inbox records, newest first (JSON)
//   - GET  /dds/notifications/{id}    one inbox record (JSON)
//   - GET  /health, GET /ready        probes
//
// Failures on the DDS routes are written as ErrorType documents in the
// discovery namespace, with the HTTP status derived from the error code.
package handler
