package review

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/taskmapper/reviewkit/auth"
	rkerrors "github.com/taskmapper/reviewkit/errors"
	"github.com/taskmapper/reviewkit/query"
	"github.com/taskmapper/reviewkit/report"
	"github.com/taskmapper/reviewkit/store"
	"github.com/taskmapper/reviewkit/taskcache"
	"github.com/taskmapper/reviewkit/transport"
)

func newTestCoordinator(opts ...Option) (*Coordinator, *transport.MemoryEndpoint, *taskcache.Client) {
	endpoint := transport.NewMemoryEndpoint()
	tasks := taskcache.NewClient(endpoint)
	return New(endpoint, tasks, opts...), endpoint, tasks
}

func TestUpdateTaskReviewStatus_Success(t *testing.T) {
	coord, endpoint, tasks := newTestCoordinator()
	tasks.ReceiveTasks(taskcache.Patch{ID: 42, Status: strPtr("Created")})

	endpoint.HandleJSON("PUT", RouteUpdateReview, map[string]interface{}{})

	if err := coord.UpdateTaskReviewStatus(context.Background(), 42, "Fixed", "looks good"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task, err := tasks.Get(42)
	if err != nil {
		t.Fatalf("task missing after update: %v", err)
	}
	if task.Status != "Fixed" {
		t.Errorf("expected status Fixed, got %q", task.Status)
	}

	calls := endpoint.CallsTo(RouteUpdateReview)
	if len(calls) != 1 {
		t.Fatalf("expected 1 update call, got %d", len(calls))
	}
	if calls[0].Params["status"] != "Fixed" {
		t.Errorf("expected status param Fixed, got %q", calls[0].Params["status"])
	}
	body, ok := calls[0].Body.(map[string]string)
	if !ok || body["comment"] != "looks good" {
		t.Errorf("expected comment body, got %#v", calls[0].Body)
	}
	if fetches := endpoint.CallsTo(taskcache.RouteTask); len(fetches) != 0 {
		t.Errorf("expected no corrective fetch on success, got %d", len(fetches))
	}
}

func TestUpdateTaskReviewStatus_OptimisticMergeIsSynchronous(t *testing.T) {
	coord, endpoint, tasks := newTestCoordinator()
	tasks.ReceiveTasks(taskcache.Patch{ID: 42, Status: strPtr("Created")})

	// The handler runs during the remote call; the optimistic status must
	// already be visible to readers at that point.
	var statusDuringCall string
	endpoint.Handle("PUT", RouteUpdateReview, func(transport.Operation) (json.RawMessage, error) {
		task, err := tasks.Get(42)
		if err != nil {
			t.Errorf("task missing during call: %v", err)
		}
		statusDuringCall = task.Status
		return json.RawMessage(`{}`), nil
	})

	if err := coord.UpdateTaskReviewStatus(context.Background(), 42, "Fixed", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statusDuringCall != "Fixed" {
		t.Errorf("expected optimistic status visible during call, got %q", statusDuringCall)
	}
}

func TestUpdateTaskReviewStatus_SecurityFailure(t *testing.T) {
	var sequence []string
	var mu sync.Mutex
	record := func(step string) {
		mu.Lock()
		defer mu.Unlock()
		sequence = append(sequence, step)
	}

	reporter := report.NewMemoryReporter()
	session := auth.SessionFunc(func(context.Context) error {
		record("reauth")
		return nil
	})

	coord, endpoint, tasks := newTestCoordinator(
		WithSession(session),
		WithReporter(report.ReporterFunc(func(desc *report.Descriptor) {
			record("report")
			reporter.AddError(desc)
		})),
	)
	tasks.ReceiveTasks(taskcache.Patch{ID: 42, Status: strPtr("Created")})

	endpoint.HandleError("PUT", RouteUpdateReview, rkerrors.Unauthorized("session expired"))
	endpoint.HandleJSON("GET", taskcache.RouteTask, map[string]interface{}{
		"id": 42, "status": "Created",
	})

	err := coord.UpdateTaskReviewStatus(context.Background(), 42, "Fixed", "")
	if err == nil {
		t.Fatal("expected error")
	}

	// Unauthorized is surfaced only after re-authentication has run.
	mu.Lock()
	got := append([]string(nil), sequence...)
	mu.Unlock()
	if len(got) != 2 || got[0] != "reauth" || got[1] != "report" {
		t.Fatalf("expected [reauth report], got %v", got)
	}

	surfaced := reporter.Errors()
	if len(surfaced) != 1 || surfaced[0].Key != report.KeyUserUnauthorized {
		t.Fatalf("expected user.unauthorized surfaced, got %#v", surfaced)
	}

	// Exactly one corrective refetch, which repairs the optimistic value.
	if fetches := endpoint.CallsTo(taskcache.RouteTask); len(fetches) != 1 {
		t.Fatalf("expected 1 corrective fetch, got %d", len(fetches))
	}
	task, getErr := tasks.Get(42)
	if getErr != nil {
		t.Fatalf("task missing after recovery: %v", getErr)
	}
	if task.Status != "Created" {
		t.Errorf("expected refetched status Created, got %q", task.Status)
	}
}

func TestUpdateTaskReviewStatus_GenericFailure(t *testing.T) {
	reporter := report.NewMemoryReporter()
	reauthed := false
	session := auth.SessionFunc(func(context.Context) error {
		reauthed = true
		return nil
	})

	coord, endpoint, tasks := newTestCoordinator(WithSession(session), WithReporter(reporter))
	tasks.ReceiveTasks(taskcache.Patch{ID: 7, Status: strPtr("Created")})

	endpoint.HandleError("PUT", RouteUpdateReview, rkerrors.Network("connection reset"))
	endpoint.HandleJSON("GET", taskcache.RouteTask, map[string]interface{}{
		"id": 7, "status": "Created",
	})

	if err := coord.UpdateTaskReviewStatus(context.Background(), 7, "Fixed", ""); err == nil {
		t.Fatal("expected error")
	}
	if reauthed {
		t.Error("re-authentication must not run for non-security failures")
	}

	surfaced := reporter.Errors()
	if len(surfaced) != 1 || surfaced[0].Key != report.KeyTaskUpdateFailure {
		t.Fatalf("expected task.updateFailure surfaced, got %#v", surfaced)
	}
	if fetches := endpoint.CallsTo(taskcache.RouteTask); len(fetches) != 1 {
		t.Errorf("expected 1 corrective fetch, got %d", len(fetches))
	}
}

func TestUpdateTaskReviewStatus_RefetchFailure(t *testing.T) {
	reporter := report.NewMemoryReporter()
	coord, endpoint, tasks := newTestCoordinator(WithReporter(reporter))
	tasks.ReceiveTasks(taskcache.Patch{ID: 7, Status: strPtr("Created")})

	endpoint.HandleError("PUT", RouteUpdateReview, rkerrors.Network("connection reset"))
	endpoint.HandleError("GET", taskcache.RouteTask, rkerrors.Network("still down"))

	err := coord.UpdateTaskReviewStatus(context.Background(), 7, "Fixed", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !rkerrors.Is(err, rkerrors.ErrCodeNetworkErr) {
		t.Errorf("expected the mutation failure surfaced, got %v", err)
	}
	// The failed refetch leaves the optimistic value in place.
	task, getErr := tasks.Get(7)
	if getErr != nil {
		t.Fatalf("task missing: %v", getErr)
	}
	if task.Status != "Fixed" {
		t.Errorf("expected optimistic status retained, got %q", task.Status)
	}
}

func TestCancelReviewClaim_ClearsOmittedClaim(t *testing.T) {
	coord, endpoint, tasks := newTestCoordinator()
	tasks.ReceiveTasks(taskcache.Patch{
		ID:              7,
		Status:          strPtr("Fixed"),
		ReviewClaimedBy: taskcache.Ref(99),
	})

	// The server omits reviewClaimedBy on success; a plain field-level
	// merge would keep the stale claim.
	endpoint.HandleJSON("PUT", RouteCancelReview, map[string]interface{}{
		"id": 7, "status": "Fixed",
	})

	if err := coord.CancelReviewClaim(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task, err := tasks.Get(7)
	if err != nil {
		t.Fatalf("task missing: %v", err)
	}
	if task.ReviewClaimedBy != nil {
		t.Errorf("expected claim cleared, got %v", *task.ReviewClaimedBy)
	}
	if task.Status != "Fixed" {
		t.Errorf("expected status preserved, got %q", task.Status)
	}
}

func TestCancelReviewClaim_UndecodableResponseStillClears(t *testing.T) {
	coord, endpoint, tasks := newTestCoordinator()
	tasks.ReceiveTasks(taskcache.Patch{ID: 7, ReviewClaimedBy: taskcache.Ref(99)})

	endpoint.Handle("PUT", RouteCancelReview, func(transport.Operation) (json.RawMessage, error) {
		return json.RawMessage(`"ok"`), nil
	})

	if err := coord.CancelReviewClaim(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task, err := tasks.Get(7)
	if err != nil {
		t.Fatalf("task missing: %v", err)
	}
	if task.ReviewClaimedBy != nil {
		t.Errorf("expected claim cleared, got %v", *task.ReviewClaimedBy)
	}
}

func TestCancelReviewClaim_Failure(t *testing.T) {
	reporter := report.NewMemoryReporter()
	coord, endpoint, tasks := newTestCoordinator(WithReporter(reporter))
	tasks.ReceiveTasks(taskcache.Patch{ID: 7, ReviewClaimedBy: taskcache.Ref(99)})

	endpoint.HandleError("PUT", RouteCancelReview, rkerrors.Network("connection reset"))
	endpoint.HandleJSON("GET", taskcache.RouteTask, map[string]interface{}{
		"id": 7, "reviewClaimedBy": 99,
	})

	if err := coord.CancelReviewClaim(context.Background(), 7); err == nil {
		t.Fatal("expected error")
	}
	surfaced := reporter.Errors()
	if len(surfaced) != 1 || surfaced[0].Key != report.KeyTaskUpdateFailure {
		t.Fatalf("expected task.updateFailure surfaced, got %#v", surfaced)
	}
	task, err := tasks.Get(7)
	if err != nil {
		t.Fatalf("task missing: %v", err)
	}
	if task.ReviewClaimedBy == nil || *task.ReviewClaimedBy != 99 {
		t.Errorf("expected refetched claim 99 retained, got %v", task.ReviewClaimedBy)
	}
}

func TestFetchClusteredTasks_Lifecycle(t *testing.T) {
	coord, endpoint, _ := newTestCoordinator()

	// The loading state must be visible before the remote call resolves.
	var statusDuringCall store.FetchStatus
	endpoint.Handle("GET", RouteReviewClusters, func(op transport.Operation) (json.RawMessage, error) {
		statusDuringCall = coord.Snapshot().Clusters.Status
		if op.Params["points"] != "25" {
			t.Errorf("expected points=25, got %q", op.Params["points"])
		}
		return json.RawMessage(`[{"challengeId":3,"numberOfPoints":12,"lat":47.6,"lng":-122.3}]`), nil
	})

	clusters, err := coord.FetchClusteredTasks(context.Background(), query.KindToBeReviewed, Criteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if statusDuringCall != store.StatusInProgress {
		t.Errorf("expected inProgress during call, got %q", statusDuringCall)
	}
	if len(clusters) != 1 || clusters[0].ChallengeID != 3 {
		t.Fatalf("unexpected clusters: %#v", clusters)
	}

	snap := coord.Snapshot()
	if snap.Clusters.Status != store.StatusSuccess {
		t.Errorf("expected success status, got %q", snap.Clusters.Status)
	}
	if len(snap.Clusters.Clusters) != 1 {
		t.Errorf("expected 1 cluster in snapshot, got %d", len(snap.Clusters.Clusters))
	}
}

func TestFetchClusteredTasks_Error(t *testing.T) {
	coord, endpoint, _ := newTestCoordinator()
	endpoint.HandleError("GET", RouteReviewClusters, rkerrors.Network("connection reset"))

	if _, err := coord.FetchClusteredTasks(context.Background(), query.KindToBeReviewed, Criteria{}); err == nil {
		t.Fatal("expected error")
	}
	snap := coord.Snapshot()
	if snap.Clusters.Status != store.StatusError {
		t.Errorf("expected error status recorded, got %q", snap.Clusters.Status)
	}
}

func TestFetchClusteredTasks_LateResponseDropped(t *testing.T) {
	coord, endpoint, _ := newTestCoordinator()

	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	endpoint.Handle("GET", RouteReviewClusters, func(transport.Operation) (json.RawMessage, error) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			<-release
			return json.RawMessage(`[{"challengeId":1,"numberOfPoints":5}]`), nil
		}
		return json.RawMessage(`[{"challengeId":2,"numberOfPoints":9}]`), nil
	})

	// First fetch blocks in flight while the second one completes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		coord.FetchClusteredTasks(context.Background(), query.KindToBeReviewed, Criteria{})
	}()
	waitForCalls(t, endpoint, RouteReviewClusters, 1)

	if _, err := coord.FetchClusteredTasks(context.Background(), query.KindToBeReviewed, Criteria{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	close(release)
	<-done

	snap := coord.Snapshot()
	if snap.LastAcceptedFetchID != 2 {
		t.Errorf("expected last accepted fetch id 2, got %d", snap.LastAcceptedFetchID)
	}
	if len(snap.Clusters.Clusters) != 1 || snap.Clusters.Clusters[0].ChallengeID != 2 {
		t.Errorf("expected clusters from the newer fetch, got %#v", snap.Clusters.Clusters)
	}
}

func TestFetchMetrics_Success(t *testing.T) {
	coord, endpoint, _ := newTestCoordinator()
	endpoint.HandleJSON("GET", RouteReviewMetrics, []store.ReviewMetrics{
		{Total: 10, Approved: 6, Rejected: 4},
	})

	metrics, err := coord.FetchMetrics(context.Background(), query.KindToBeReviewed, Criteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics == nil || metrics.Total != 10 {
		t.Fatalf("unexpected metrics: %#v", metrics)
	}
	snap := coord.Snapshot()
	if snap.Metrics == nil || snap.Metrics.Approved != 6 {
		t.Errorf("expected metrics in snapshot, got %#v", snap.Metrics)
	}
}

func TestFetchMetrics_EmptyResponseIsNoUpdate(t *testing.T) {
	coord, endpoint, _ := newTestCoordinator()
	endpoint.HandleJSON("GET", RouteReviewMetrics, []store.ReviewMetrics{})

	metrics, err := coord.FetchMetrics(context.Background(), query.KindToBeReviewed, Criteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics != nil {
		t.Errorf("expected no metrics, got %#v", metrics)
	}
	if snap := coord.Snapshot(); snap.Metrics != nil {
		t.Errorf("expected snapshot metrics untouched, got %#v", snap.Metrics)
	}
}

func TestFetchMetrics_FailureIsSilent(t *testing.T) {
	reporter := report.NewMemoryReporter()
	coord, endpoint, _ := newTestCoordinator(WithReporter(reporter))
	endpoint.HandleError("GET", RouteReviewMetrics, rkerrors.Network("connection reset"))

	if _, err := coord.FetchMetrics(context.Background(), query.KindToBeReviewed, Criteria{}); err == nil {
		t.Fatal("expected error returned to the caller")
	}
	if surfaced := reporter.Errors(); len(surfaced) != 0 {
		t.Errorf("metrics failures must never be surfaced, got %#v", surfaced)
	}
	if snap := coord.Snapshot(); snap.Metrics != nil {
		t.Errorf("expected snapshot metrics untouched, got %#v", snap.Metrics)
	}
}

func TestFetchTasks_ReplacesSliceAndClearsStale(t *testing.T) {
	coord, endpoint, _ := newTestCoordinator()
	coord.MarkStale("project switch")

	endpoint.HandleJSON("GET", RouteReviewTasks, listResponse{
		Tasks: []store.TaskSummary{{ID: 1, ReviewStatus: "Requested"}},
		Total: 120,
	})

	tasks, total, err := coord.FetchTasks(context.Background(), query.KindToBeReviewed, Criteria{
		Page:     2,
		PageSize: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || total != 120 {
		t.Fatalf("unexpected page: %d tasks, total %d", len(tasks), total)
	}

	slice, ok := coord.Snapshot().List(store.SliceReviewNeeded)
	if !ok {
		t.Fatal("missing reviewNeeded slice")
	}
	if slice.DataStale {
		t.Error("expected staleness cleared after fetch")
	}
	if slice.TotalCount != 120 || len(slice.Tasks) != 1 {
		t.Errorf("unexpected slice: %#v", slice)
	}

	// The untouched slices stay stale.
	if reviewed, _ := coord.Snapshot().List(store.SliceReviewed); !reviewed.DataStale {
		t.Error("expected other slices to remain stale")
	}

	calls := endpoint.CallsTo(RouteReviewTasks)
	if len(calls) != 1 {
		t.Fatalf("expected 1 list call, got %d", len(calls))
	}
	if calls[0].Params["limit"] != "50" || calls[0].Params["page"] != "2" {
		t.Errorf("unexpected pagination params: %v", calls[0].Params)
	}
	if calls[0].PathVars["type"] != "1" {
		t.Errorf("expected type 1 for toBeReviewed, got %q", calls[0].PathVars["type"])
	}
}

func TestClaimNextTask(t *testing.T) {
	coord, endpoint, tasks := newTestCoordinator()
	endpoint.HandleJSON("GET", RouteNextTask, map[string]interface{}{
		"id": 31, "name": "crossing check", "status": "Requested", "reviewClaimedBy": 12,
	})

	task, err := coord.ClaimNextTask(context.Background(), Criteria{
		Sort: &query.SortCriteria{SortBy: "mappedOn", Direction: "ASC"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != 31 || task.ReviewClaimedBy == nil || *task.ReviewClaimedBy != 12 {
		t.Fatalf("unexpected task: %#v", task)
	}

	cached, err := tasks.Get(31)
	if err != nil || cached.Name != "crossing check" {
		t.Errorf("expected claimed task cached, got %#v (%v)", cached, err)
	}

	calls := endpoint.CallsTo(RouteNextTask)
	if len(calls) != 1 {
		t.Fatalf("expected 1 next-task call, got %d", len(calls))
	}
	if calls[0].Params["sort"] != "mapped_on" || calls[0].Params["order"] != "ASC" {
		t.Errorf("unexpected sort params: %v", calls[0].Params)
	}
}

func TestStartReview(t *testing.T) {
	coord, endpoint, _ := newTestCoordinator()
	endpoint.HandleJSON("PUT", RouteStartReview, map[string]interface{}{
		"id": 31, "status": "Requested", "reviewClaimedBy": 12,
	})

	task, err := coord.StartReview(context.Background(), 31)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ReviewClaimedBy == nil || *task.ReviewClaimedBy != 12 {
		t.Fatalf("expected claim merged, got %#v", task)
	}
	calls := endpoint.CallsTo(RouteStartReview)
	if len(calls) != 1 || calls[0].PathVars["id"] != "31" {
		t.Fatalf("unexpected calls: %#v", calls)
	}
}

func TestMarkStale(t *testing.T) {
	coord, _, _ := newTestCoordinator()
	coord.MarkStale("push notification")

	snap := coord.Snapshot()
	for _, name := range []store.SliceName{store.SliceReviewNeeded, store.SliceReviewed, store.SliceReviewedByUser} {
		if slice, _ := snap.List(name); !slice.DataStale {
			t.Errorf("expected %q stale", name)
		}
	}
}

func waitForCalls(t *testing.T, endpoint *transport.MemoryEndpoint, route string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(endpoint.CallsTo(route)) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d calls to %s", n, route)
}

func strPtr(s string) *string {
	return &s
}
