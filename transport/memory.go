package transport

import (
	"context"
	"encoding/json"
	"sync"

	rkerrors "github.com/taskmapper/reviewkit/errors"
)

// Handler produces the response for one scripted route.
type Handler func(op Operation) (json.RawMessage, error)

// MemoryEndpoint is an in-process endpoint with scripted responses, used
// in tests and single-process setups. Routes are matched on method and
// unexpanded route template.
type MemoryEndpoint struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Operation
}

// NewMemoryEndpoint creates an empty scripted endpoint.
func NewMemoryEndpoint() *MemoryEndpoint {
	return &MemoryEndpoint{
		handlers: make(map[string]Handler),
	}
}

// Handle registers the handler for a method and route template.
func (e *MemoryEndpoint) Handle(method, route string, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[method+" "+route] = handler
}

// HandleJSON registers a handler that always answers with the JSON
// encoding of value.
func (e *MemoryEndpoint) HandleJSON(method, route string, value interface{}) {
	payload, err := json.Marshal(value)
	e.Handle(method, route, func(Operation) (json.RawMessage, error) {
		if err != nil {
			return nil, rkerrors.Internal("encoding scripted response", rkerrors.WithCause(err))
		}
		return payload, nil
	})
}

// HandleError registers a handler that always fails with err.
func (e *MemoryEndpoint) HandleError(method, route string, err error) {
	e.Handle(method, route, func(Operation) (json.RawMessage, error) {
		return nil, err
	})
}

// Execute runs the scripted handler for the operation's route. Unscripted
// routes fail with NOT_FOUND.
func (e *MemoryEndpoint) Execute(ctx context.Context, op Operation) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, rkerrors.Wrap(err, "executing "+op.Route, rkerrors.WithRoute(op.Route))
	}

	method := op.Method
	if method == "" {
		method = "GET"
	}

	e.mu.Lock()
	e.calls = append(e.calls, op)
	handler, ok := e.handlers[method+" "+op.Route]
	e.mu.Unlock()

	if !ok {
		return nil, rkerrors.NotFound("no handler for "+method+" "+op.Route, rkerrors.WithRoute(op.Route))
	}
	return handler(op)
}

// Calls returns a copy of all executed operations, in order.
func (e *MemoryEndpoint) Calls() []Operation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Operation, len(e.calls))
	copy(out, e.calls)
	return out
}

// CallsTo returns the executed operations matching a route template.
func (e *MemoryEndpoint) CallsTo(route string) []Operation {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Operation
	for _, op := range e.calls {
		if op.Route == route {
			out = append(out, op)
		}
	}
	return out
}
