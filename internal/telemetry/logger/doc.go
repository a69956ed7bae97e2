// Package logger provides structured logging for the DDS notification
// service.
//
// It wraps log/slog with a small interface so that packages can accept a
// Logger without depending on a concrete handler:
//
//   - logger.go: construction, level control and the process default
//   - context.go: request ID propagation through context.Context
//   - redact.go: masking of credentials and truncation of payload text
//
// The level is held in a shared slog.LevelVar so that SetLevel takes
// effect on every logger derived from New, which is how configuration
// reloads change verbosity at runtime.
package logger
