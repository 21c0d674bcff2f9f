// Package store holds the authoritative in-memory snapshot of review data
// and the pure reduction function that advances it.
//
// The snapshot is immutable per version: Reduce never mutates its input,
// so any holder of a previous Snapshot keeps a consistent view. The Store
// type provides the single serialized dispatch point required by the
// concurrency model (no two reductions ever interleave) plus read access
// and watch channels for UI subscription.
//
// Events form a closed union (MarkStale, ListReceived, MetricsReceived,
// ClustersReceived). The reducer never fails: non-success outcomes and
// unrecognized events reduce to the identity, and cluster events are
// additionally filtered through the fetch-id guard in package sequence.
package store
