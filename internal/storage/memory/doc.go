// Package memory provides a process-local notification inbox.
//
// Records are cloned on the way in and on the way out, so callers never
// share state with the store.
package memory
