package taskcache

import (
	"context"
	"encoding/json"
	"strconv"

	rkerrors "github.com/taskmapper/reviewkit/errors"
	"github.com/taskmapper/reviewkit/transport"
)

// RouteTask is the authoritative single-task read, used for corrective
// refetch after failed mutations.
const RouteTask = "task/{id}"

// Client pairs the task cache with the endpoint, providing the fetch
// helpers that merge authoritative server records into the cache.
type Client struct {
	cache    *MemoryCache
	endpoint transport.Endpoint
}

// NewClient creates a task client over the given endpoint.
func NewClient(endpoint transport.Endpoint) *Client {
	return &Client{
		cache:    NewMemoryCache(),
		endpoint: endpoint,
	}
}

// ReceiveTasks merges partial records into the cache.
func (c *Client) ReceiveTasks(patches ...Patch) {
	c.cache.ReceiveTasks(patches...)
}

// ReceiveTask normalizes a raw server task payload and merges it,
// returning the resulting cached record.
func (c *Client) ReceiveTask(payload json.RawMessage) (Task, error) {
	patch, err := PatchFromJSON(payload)
	if err != nil {
		return Task{}, rkerrors.Decode("normalizing task payload", rkerrors.WithCause(err))
	}
	c.cache.ReceiveTasks(patch)
	return c.cache.Get(patch.ID)
}

// FetchTask reads the authoritative task record from the server and
// merges it into the cache, overwriting any optimistic local value.
func (c *Client) FetchTask(ctx context.Context, id int64) (Task, error) {
	payload, err := c.endpoint.Execute(ctx, transport.Operation{
		Route:    RouteTask,
		PathVars: map[string]string{"id": strconv.FormatInt(id, 10)},
	})
	if err != nil {
		return Task{}, rkerrors.Wrap(err, "fetching task", rkerrors.WithTaskID(id))
	}
	return c.ReceiveTask(payload)
}

// Get returns the cached task record.
func (c *Client) Get(id int64) (Task, error) {
	return c.cache.Get(id)
}
