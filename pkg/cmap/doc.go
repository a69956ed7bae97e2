// Package cmap provides a sharded, string-keyed concurrent map.
//
// Each shard has its own RWMutex, so unrelated keys rarely contend. It
// backs the per-peer rate limiters and the in-memory inbox.
//
//	m := cmap.New[*entry](0)
//	v, loaded := m.GetOrCreate("10.0.0.1", newEntry)
//
// Range and Sweep visit shards one at a time; the view across shards is
// not a consistent snapshot.
package cmap
