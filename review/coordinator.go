package review

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/taskmapper/reviewkit/auth"
	rkerrors "github.com/taskmapper/reviewkit/errors"
	"github.com/taskmapper/reviewkit/logging"
	"github.com/taskmapper/reviewkit/query"
	"github.com/taskmapper/reviewkit/report"
	"github.com/taskmapper/reviewkit/sequence"
	"github.com/taskmapper/reviewkit/store"
	"github.com/taskmapper/reviewkit/taskcache"
	"github.com/taskmapper/reviewkit/transport"
)

// DefaultClusterPointLimit caps the points returned per cluster fetch.
const DefaultClusterPointLimit = 25

// Criteria bundles the search inputs for the fetch operations.
type Criteria struct {
	Filters             query.Filters
	BoundingBox         *query.BoundingBox
	SavedChallengesOnly bool

	// Sort orders the next-task retrieval and list fetches.
	Sort *query.SortCriteria

	// Page and PageSize control list pagination. Zero PageSize means the
	// server default.
	Page     int
	PageSize int
}

// TaskStore is the normalized task entity collaborator. Present patch
// fields overwrite cached values, absent fields preserve them; see
// package taskcache.
type TaskStore interface {
	// ReceiveTasks merges partial task records.
	ReceiveTasks(patches ...taskcache.Patch)

	// ReceiveTask normalizes and merges a raw server task payload.
	ReceiveTask(payload json.RawMessage) (taskcache.Task, error)

	// FetchTask reads the authoritative record and merges it in.
	FetchTask(ctx context.Context, id int64) (taskcache.Task, error)
}

// Coordinator orchestrates the asynchronous review operations: fetching
// metrics, clusters, and task lists, claiming tasks, and mutating review
// status with optimistic updates. Every operation call blocks until its
// result is known; run concurrent operations in their own goroutines.
// All snapshot mutation flows through the store's serialized dispatch.
type Coordinator struct {
	endpoint transport.Endpoint
	tasks    TaskStore
	session  auth.Session
	reporter report.Reporter
	store    *store.Store
	seq      *sequence.Sequencer
	log      *logging.Logger

	clusterPointLimit int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSession sets the re-authentication collaborator.
func WithSession(session auth.Session) Option {
	return func(c *Coordinator) {
		c.session = session
	}
}

// WithReporter sets the user-visible error sink.
func WithReporter(reporter report.Reporter) Option {
	return func(c *Coordinator) {
		c.reporter = reporter
	}
}

// WithStore sets the snapshot store.
func WithStore(s *store.Store) Option {
	return func(c *Coordinator) {
		c.store = s
	}
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithClusterPointLimit overrides the cluster point cap.
func WithClusterPointLimit(limit int) Option {
	return func(c *Coordinator) {
		c.clusterPointLimit = limit
	}
}

// New creates a Coordinator over the given endpoint and task store.
func New(endpoint transport.Endpoint, tasks TaskStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		endpoint:          endpoint,
		tasks:             tasks,
		session:           auth.SessionFunc(func(context.Context) error { return nil }),
		reporter:          report.NewMemoryReporter(),
		store:             store.New(),
		seq:               sequence.NewSequencer(),
		log:               logging.New().WithComponent("review"),
		clusterPointLimit: DefaultClusterPointLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the snapshot store for reads and watch subscriptions.
func (c *Coordinator) Store() *store.Store {
	return c.store
}

// Snapshot returns the current review snapshot.
func (c *Coordinator) Snapshot() store.Snapshot {
	return c.store.Snapshot()
}

// MarkStale broadcasts staleness across all three task lists, for use
// when the caller learns data may be outdated (push notification,
// periodic poll, or a local event such as switching projects).
func (c *Coordinator) MarkStale(reason string) {
	c.store.Dispatch(store.MarkStale{})
	c.log.StaleBroadcast(reason)
}

// FetchMetrics retrieves aggregate review metrics for the given list
// kind. Failures are logged and returned but never surfaced to the user
// and never mutate the snapshot: metrics are best-effort. A well-formed
// response with no metrics records is treated as "no update".
func (c *Coordinator) FetchMetrics(ctx context.Context, kind query.ListKind, criteria Criteria) (*store.ReviewMetrics, error) {
	payload, err := c.endpoint.Execute(ctx, transport.Operation{
		Route:    RouteReviewMetrics,
		PathVars: typeVars(kind),
		Params:   searchParams(criteria),
	})
	if err != nil {
		c.log.MetricsFailure(err)
		return nil, err
	}

	var results []store.ReviewMetrics
	if err := json.Unmarshal(payload, &results); err != nil {
		decodeErr := rkerrors.Decode("decoding review metrics", rkerrors.WithCause(err))
		c.log.MetricsFailure(decodeErr)
		return nil, decodeErr
	}
	if len(results) == 0 {
		return nil, nil
	}

	metrics := results[0]
	c.store.Dispatch(store.MetricsReceived{Status: store.StatusSuccess, Metrics: metrics})
	return &metrics, nil
}

// FetchClusteredTasks retrieves clustered task summaries. The in-progress
// event is dispatched before the remote call begins, so the snapshot
// shows a loading state tagged with this fetch id ahead of any response.
// Responses of superseded fetches are dropped by the store's fetch-id
// guard; a transport failure records an explicit error state instead.
func (c *Coordinator) FetchClusteredTasks(ctx context.Context, kind query.ListKind, criteria Criteria) ([]store.ClusterSummary, error) {
	fetchID := c.seq.NextID()
	c.store.Dispatch(store.ClustersReceived{Status: store.StatusInProgress, FetchID: fetchID})
	c.log.FetchStart("clusters", uint64(fetchID))
	started := time.Now()

	params := searchParams(criteria)
	params["points"] = strconv.Itoa(c.clusterPointLimit)

	payload, err := c.endpoint.Execute(ctx, transport.Operation{
		Route:    RouteReviewClusters,
		PathVars: typeVars(kind),
		Params:   params,
	})
	if err != nil {
		c.store.Dispatch(store.ClustersReceived{Status: store.StatusError, FetchID: fetchID})
		c.log.FetchComplete("clusters", uint64(fetchID), time.Since(started), err)
		return nil, err
	}

	var clusters []store.ClusterSummary
	if err := json.Unmarshal(payload, &clusters); err != nil {
		decodeErr := rkerrors.Decode("decoding task clusters", rkerrors.WithCause(err))
		c.store.Dispatch(store.ClustersReceived{Status: store.StatusError, FetchID: fetchID})
		c.log.FetchComplete("clusters", uint64(fetchID), time.Since(started), decodeErr)
		return nil, decodeErr
	}

	c.store.Dispatch(store.ClustersReceived{Status: store.StatusSuccess, Clusters: clusters, FetchID: fetchID})
	c.log.FetchComplete("clusters", uint64(fetchID), time.Since(started), nil)

	if accepted := c.store.Snapshot().LastAcceptedFetchID; accepted != fetchID {
		c.log.Superseded(uint64(fetchID), uint64(accepted))
	}
	return clusters, nil
}

// listResponse is the server shape for a task list page.
type listResponse struct {
	Tasks []store.TaskSummary `json:"tasks"`
	Total int                 `json:"total"`
}

// FetchTasks retrieves one page of the review task list for the given
// kind and replaces the corresponding snapshot slice, clearing its
// staleness flag. On failure the slice is left as-is.
func (c *Coordinator) FetchTasks(ctx context.Context, kind query.ListKind, criteria Criteria) ([]store.TaskSummary, int, error) {
	params := searchParams(criteria)
	if criteria.Sort != nil {
		for k, v := range query.BuildSortParameters(criteria.Sort) {
			params[k] = v
		}
	}
	if criteria.PageSize > 0 {
		params["limit"] = strconv.Itoa(criteria.PageSize)
		params["page"] = strconv.Itoa(criteria.Page)
	}

	payload, err := c.endpoint.Execute(ctx, transport.Operation{
		Route:    RouteReviewTasks,
		PathVars: typeVars(kind),
		Params:   params,
	})
	if err != nil {
		return nil, 0, rkerrors.Wrap(err, "fetching review tasks")
	}

	var resp listResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, 0, rkerrors.Decode("decoding review task list", rkerrors.WithCause(err))
	}

	c.store.Dispatch(store.ListReceived{
		Slice:      sliceForKind(kind),
		Status:     store.StatusSuccess,
		Tasks:      resp.Tasks,
		TotalCount: resp.Total,
	})
	return resp.Tasks, resp.Total, nil
}

// ClaimNextTask fetches and atomically claims the next task matching the
// criteria. Sort defaults to descending with no sort key when absent.
// Normalization of the returned task is delegated to the task store.
func (c *Coordinator) ClaimNextTask(ctx context.Context, criteria Criteria) (taskcache.Task, error) {
	params := searchParams(criteria)
	for k, v := range query.BuildSortParameters(criteria.Sort) {
		params[k] = v
	}

	payload, err := c.endpoint.Execute(ctx, transport.Operation{
		Route:  RouteNextTask,
		Params: params,
	})
	if err != nil {
		return taskcache.Task{}, rkerrors.Wrap(err, "claiming next review task")
	}
	return c.tasks.ReceiveTask(payload)
}

// StartReview claims the given task for review and merges the server's
// record of the claim.
func (c *Coordinator) StartReview(ctx context.Context, taskID int64) (taskcache.Task, error) {
	payload, err := c.endpoint.Execute(ctx, transport.Operation{
		Method:   http.MethodPut,
		Route:    RouteStartReview,
		PathVars: idVars(taskID),
	})
	if err != nil {
		return taskcache.Task{}, rkerrors.Wrap(err, "starting review", rkerrors.WithTaskID(taskID))
	}
	return c.tasks.ReceiveTask(payload)
}

// UpdateTaskReviewStatus completes or changes a task's review status.
//
// The new status is merged into the task store synchronously, before the
// remote call: readers observe the optimistic value immediately. On
// success the optimistic value stands. On failure the authoritative
// record is refetched (read-repair, not rollback) and the failure is
// surfaced: security failures re-authenticate first and then report
// unauthorized; everything else reports a generic update failure.
func (c *Coordinator) UpdateTaskReviewStatus(ctx context.Context, taskID int64, newStatus, comment string) error {
	c.tasks.ReceiveTasks(taskcache.StatusPatch(taskID, newStatus))

	_, err := c.endpoint.Execute(ctx, transport.Operation{
		Method:   http.MethodPut,
		Route:    RouteUpdateReview,
		PathVars: idVars(taskID),
		Params:   map[string]string{"status": newStatus},
		Body:     map[string]string{"comment": comment},
	})
	if err == nil {
		return nil
	}
	return c.recoverMutation(ctx, taskID, "updating review status", err)
}

// CancelReviewClaim releases the task's review claim. The server's
// success response omits reviewClaimedBy (absent means no claim); since
// the task store preserves absent fields on merge, the claim is
// explicitly normalized to null here so a stale claim cannot survive.
// Failures branch exactly as in UpdateTaskReviewStatus.
func (c *Coordinator) CancelReviewClaim(ctx context.Context, taskID int64) error {
	payload, err := c.endpoint.Execute(ctx, transport.Operation{
		Method:   http.MethodPut,
		Route:    RouteCancelReview,
		PathVars: idVars(taskID),
	})
	if err != nil {
		return c.recoverMutation(ctx, taskID, "canceling review claim", err)
	}

	patch, perr := taskcache.PatchFromJSON(payload)
	if perr != nil {
		patch = taskcache.Patch{ID: taskID}
	}
	patch.ReviewClaimedBy = taskcache.NullRef()
	c.tasks.ReceiveTasks(patch)
	return nil
}

// recoverMutation is the shared failure path for review mutations:
// classify, surface, and read-repair. The corrective refetch is issued
// exactly once per failure, in both branches; there is no undo for the
// optimistic merge, only refetched truth.
func (c *Coordinator) recoverMutation(ctx context.Context, taskID int64, op string, cause error) error {
	security := rkerrors.IsSecurity(cause)
	if security {
		// Surface unauthorized only after re-authentication completes or
		// fails; the original operation is never retried.
		if authErr := c.session.EnsureUserLoggedIn(ctx); authErr != nil {
			c.log.Warn("re-authentication failed", map[string]interface{}{
				"error": authErr.Error(),
			})
		}
		c.reporter.AddError(report.UserUnauthorized())
	} else {
		c.reporter.AddError(report.TaskUpdateFailure())
	}
	c.log.MutationFailure(taskID, security, cause)

	if _, fetchErr := c.tasks.FetchTask(ctx, taskID); fetchErr != nil {
		c.log.RefetchFailure(taskID, fetchErr)
	}
	return rkerrors.Wrap(cause, op, rkerrors.WithTaskID(taskID))
}

// typeVars builds the {type} path variable for a list kind.
func typeVars(kind query.ListKind) map[string]string {
	return map[string]string{
		"type": strconv.Itoa(query.ResolveReviewTypeCode(kind)),
	}
}

// idVars builds the {id} path variable for a task.
func idVars(id int64) map[string]string {
	return map[string]string{
		"id": strconv.FormatInt(id, 10),
	}
}

// searchParams translates the criteria's filter portion.
func searchParams(criteria Criteria) map[string]string {
	return query.BuildSearchParameters(criteria.Filters, criteria.BoundingBox, criteria.SavedChallengesOnly)
}

// sliceForKind maps a list kind to its snapshot slice.
func sliceForKind(kind query.ListKind) store.SliceName {
	switch kind {
	case query.KindToBeReviewed:
		return store.SliceReviewNeeded
	case query.KindReviewedByMe:
		return store.SliceReviewed
	default:
		return store.SliceReviewedByUser
	}
}
