package store

import "github.com/taskmapper/reviewkit/sequence"

// Event is the sealed union of state transitions the reducer understands.
// Sealing keeps the set of transitions closed: reductions are exhaustive
// over these types, and anything else reduces to the identity.
type Event interface {
	isEvent()
}

// Ensure all event types implement Event.
func (MarkStale) isEvent()        {}
func (ListReceived) isEvent()     {}
func (MetricsReceived) isEvent()  {}
func (ClustersReceived) isEvent() {}

// MarkStale flags all three task lists as possibly outdated. Staleness is
// always broadcast; individual lists are never marked alone. Metrics and
// clusters are untouched.
type MarkStale struct{}

// ListReceived carries the outcome of a list fetch. Only success events
// mutate the snapshot; in-progress and error outcomes are signals for the
// coordinator, not the reducer.
type ListReceived struct {
	Slice      SliceName
	Status     FetchStatus
	Tasks      []TaskSummary
	TotalCount int
}

// MetricsReceived carries the outcome of a metrics fetch.
type MetricsReceived struct {
	Status  FetchStatus
	Metrics ReviewMetrics
}

// ClustersReceived carries one step of a cluster fetch lifecycle:
// in-progress at issue time, then success or error at resolution. Each
// carries the fetch id assigned when the request was issued.
type ClustersReceived struct {
	Status   FetchStatus
	Clusters []ClusterSummary
	FetchID  sequence.FetchID
}
