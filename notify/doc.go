// Package notify delivers staleness invalidations to the review core.
//
// An invalidation means locally held review data may be outdated; the
// reaction is always the same broadcast staleness flag, and fresh data
// arrives through normal fetches. Sources are interchangeable:
//
//   - NATSSource: push over a NATS subject
//   - WebsocketSource: push over a websocket connection
//   - TickerSource: periodic poll
//   - MemorySource: in-process, for tests and application events
//
// Pump connects any source to the coordinator's mark-stale trigger.
package notify
