// Package transport provides pluggable endpoints for executing review
// service operations.
//
// Operations are plain descriptors (route, path variables, query
// parameters, optional body); the Endpoint interface keeps backends
// interchangeable:
//
//   - HTTPEndpoint: real HTTP calls against the service
//   - MemoryEndpoint: scripted in-process responses for tests
//   - TracingEndpoint: OpenTelemetry span-per-call decorator
//
// Endpoints own error classification: authorization denials (HTTP
// 401/403) come back in the security category, network and server
// failures in the transient category. Callers branch on category only;
// retry and backoff are not implemented here; the coordinator recovers
// by refetching authoritative state instead.
package transport
