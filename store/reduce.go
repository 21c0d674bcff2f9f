package store

import "github.com/taskmapper/reviewkit/sequence"

// Reduce applies one event to a snapshot and returns the resulting
// snapshot. It is pure and total: the input snapshot is never mutated,
// no event is an error, and unrecognized events reduce to the identity.
func Reduce(snap Snapshot, event Event) Snapshot {
	switch ev := event.(type) {
	case MarkStale:
		snap.ReviewNeeded.DataStale = true
		snap.Reviewed.DataStale = true
		snap.ReviewedByUser.DataStale = true
		return snap

	case ListReceived:
		if ev.Status != StatusSuccess {
			return snap
		}
		slice := ListSlice{
			Tasks:      cloneTasks(ev.Tasks),
			TotalCount: ev.TotalCount,
			DataStale:  false,
		}
		switch ev.Slice {
		case SliceReviewNeeded:
			snap.ReviewNeeded = slice
		case SliceReviewed:
			snap.Reviewed = slice
		case SliceReviewedByUser:
			snap.ReviewedByUser = slice
		default:
			// Unrecognized slice name: identity.
		}
		return snap

	case MetricsReceived:
		if ev.Status != StatusSuccess {
			return snap
		}
		metrics := ev.Metrics
		snap.Metrics = &metrics
		return snap

	case ClustersReceived:
		// The fetch-id guard applies to every cluster event. A losing id
		// means the response belongs to a superseded request; dropping it
		// is not an error.
		if !sequence.Accept(ev.FetchID, snap.LastAcceptedFetchID) {
			return snap
		}
		snap.Clusters = ClusterSlice{
			Status:   ev.Status,
			Clusters: cloneClusters(ev.Clusters),
			FetchID:  ev.FetchID,
		}
		snap.LastAcceptedFetchID = ev.FetchID
		return snap

	default:
		return snap
	}
}

// cloneTasks copies the task slice so snapshots never alias caller memory.
// A nil input becomes an empty list, never a missing one.
func cloneTasks(tasks []TaskSummary) []TaskSummary {
	out := make([]TaskSummary, len(tasks))
	copy(out, tasks)
	return out
}

func cloneClusters(clusters []ClusterSummary) []ClusterSummary {
	out := make([]ClusterSummary, len(clusters))
	copy(out, clusters)
	return out
}
