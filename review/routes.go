package review

// Server routes for review operations. Path variables are expanded by the
// transport layer.
const (
	// RouteReviewTasks pages through one of the review task lists.
	RouteReviewTasks = "tasks/review/{type}"

	// RouteReviewMetrics returns aggregate review metrics.
	RouteReviewMetrics = "tasks/review/{type}/metrics"

	// RouteReviewClusters returns clustered/mapped task summaries.
	RouteReviewClusters = "tasks/review/{type}/clusters"

	// RouteNextTask fetches and atomically claims the next task for
	// review, honoring the sort parameters.
	RouteNextTask = "tasks/review/next"

	// RouteStartReview claims a task for review.
	RouteStartReview = "task/{id}/review/start"

	// RouteUpdateReview completes or changes a task's review status.
	RouteUpdateReview = "task/{id}/review"

	// RouteCancelReview releases a review claim.
	RouteCancelReview = "task/{id}/review/cancel"
)
