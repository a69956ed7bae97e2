// Package shutdown runs registered hooks when the process is asked to
// stop, either by SIGINT/SIGTERM or by Trigger.
//
// Hooks run in reverse registration order under one shared deadline, so
// the HTTP listener registered last stops accepting notifications before
// the inbox registered first is closed.
package shutdown
