package store

import "github.com/taskmapper/reviewkit/sequence"

// FetchStatus tracks the lifecycle of an asynchronous fetch as observed
// through the snapshot.
type FetchStatus string

const (
	// StatusInProgress marks a fetch that has been issued but not resolved.
	StatusInProgress FetchStatus = "inProgress"

	// StatusSuccess marks a fetch whose response was applied.
	StatusSuccess FetchStatus = "success"

	// StatusError marks a fetch that failed at the transport level.
	StatusError FetchStatus = "error"
)

// SliceName identifies one of the three review task lists.
type SliceName string

const (
	// SliceReviewNeeded holds tasks awaiting review.
	SliceReviewNeeded SliceName = "reviewNeeded"

	// SliceReviewed holds tasks the current user has reviewed.
	SliceReviewed SliceName = "reviewed"

	// SliceReviewedByUser holds the user's own tasks reviewed by others.
	SliceReviewedByUser SliceName = "reviewedByUser"
)

// TaskSummary mirrors the minimal task fields this core needs for display
// and optimistic update. Full task records are owned by the task cache;
// the snapshot never inspects fields beyond these.
type TaskSummary struct {
	ID int64 `json:"id"`

	// ReviewStatus is the task's review status.
	ReviewStatus string `json:"reviewStatus"`

	// ReviewClaimedBy is the user currently holding the review claim,
	// nil when unclaimed.
	ReviewClaimedBy *int64 `json:"reviewClaimedBy"`
}

// ListSlice is the state of one review task list.
type ListSlice struct {
	Tasks      []TaskSummary
	TotalCount int

	// DataStale is set by a staleness broadcast and cleared by the next
	// successful list fetch. It is never set for an individual list.
	DataStale bool
}

// ReviewMetrics is the aggregate metrics payload, stored verbatim as
// received.
type ReviewMetrics struct {
	Total     int `json:"total"`
	Requested int `json:"reviewRequested"`
	Approved  int `json:"reviewApproved"`
	Rejected  int `json:"reviewRejected"`
	Assisted  int `json:"reviewAssisted"`
	Disputed  int `json:"reviewDisputed"`
}

// ClusterSummary is one map cluster of review tasks.
type ClusterSummary struct {
	ChallengeID int64   `json:"challengeId"`
	TaskCount   int     `json:"numberOfPoints"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lng"`
}

// ClusterSlice is the state of the clustered task view, tagged with the
// fetch id that produced it.
type ClusterSlice struct {
	Status   FetchStatus
	Clusters []ClusterSummary
	FetchID  sequence.FetchID
}

// Snapshot is the authoritative in-memory view of review data. Snapshots
// are immutable per version: every reduction produces a new value and any
// previously obtained Snapshot remains valid and unchanged.
type Snapshot struct {
	ReviewNeeded   ListSlice
	Reviewed       ListSlice
	ReviewedByUser ListSlice

	// Metrics holds the last received metrics payload, nil until the
	// first successful metrics fetch.
	Metrics *ReviewMetrics

	Clusters ClusterSlice

	// LastAcceptedFetchID is the highest fetch id whose cluster event was
	// applied. Monotonically non-decreasing.
	LastAcceptedFetchID sequence.FetchID
}

// List returns the named list slice. The second return is false for an
// unrecognized name.
func (s Snapshot) List(name SliceName) (ListSlice, bool) {
	switch name {
	case SliceReviewNeeded:
		return s.ReviewNeeded, true
	case SliceReviewed:
		return s.Reviewed, true
	case SliceReviewedByUser:
		return s.ReviewedByUser, true
	default:
		return ListSlice{}, false
	}
}
