// Package review is the coordinator tying the synchronization core
// together: it executes remote review operations through a transport
// endpoint, dispatches the results into the snapshot store, and keeps
// the normalized task cache consistent.
//
// Reads (metrics, clusters, task lists) follow a fetch lifecycle: the
// snapshot shows an in-progress state as soon as the request is issued,
// and responses arriving out of order are dropped by the store's
// fetch-id guard. Mutations (review status updates, claim cancellation)
// are optimistic: the expected outcome is merged into the task cache
// before the remote call, and on failure the authoritative record is
// refetched rather than rolled back. Security failures trigger
// re-authentication before an unauthorized error is surfaced; all other
// mutation failures surface a generic update failure. Metrics failures
// are logged and never surfaced.
package review
