// Package storage keeps the notification inbox: a bounded log of
// summaries of the notification lists a provider has pushed to us.
//
// Two engines implement Inbox:
//
//   - BadgerInbox: durable, keyed by record ID, JSON values, periodic
//     value-log GC and size gauges
//   - memory.Inbox: process-local, for tests and engine "memory"
//
// Record IDs are ULIDs, so key order is arrival order. Retention is the
// number of records kept; the oldest are pruned on Append.
package storage
