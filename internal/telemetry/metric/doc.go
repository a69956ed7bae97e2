// Package metric exposes Prometheus metrics for the notification
// service.
//
//   - prometheus.go: the registry, the /metrics handler and the helpers
//     the HTTP layer records through
//   - collector.go: a scrape-time collector reporting inbox size
//
// A nil *Registry is valid and records nothing, so components can be
// built without metrics in tests.
package metric
