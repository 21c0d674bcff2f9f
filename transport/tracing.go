package transport

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	rkerrors "github.com/taskmapper/reviewkit/errors"
)

// TracingEndpoint wraps another endpoint with an OpenTelemetry span per
// executed operation.
type TracingEndpoint struct {
	next   Endpoint
	tracer trace.Tracer
}

// NewTracingEndpoint wraps next with tracing under the given tracer name.
func NewTracingEndpoint(next Endpoint, name string) *TracingEndpoint {
	return &TracingEndpoint{
		next:   next,
		tracer: otel.Tracer(name),
	}
}

// Execute runs the operation inside a span recording route, method, and
// the error classification on failure.
func (e *TracingEndpoint) Execute(ctx context.Context, op Operation) (json.RawMessage, error) {
	method := op.Method
	if method == "" {
		method = "GET"
	}

	ctx, span := e.tracer.Start(ctx, "review.endpoint.execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("review.route", op.Route),
			attribute.String("review.method", method),
		),
	)
	defer span.End()

	result, err := e.next.Execute(ctx, op)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		if code := rkerrors.Code(err); code != "" {
			span.SetAttributes(
				attribute.String("review.error_code", code.String()),
				attribute.String("review.error_category", rkerrors.Category(err).String()),
			)
		}
		return nil, err
	}

	span.SetStatus(otelcodes.Ok, "")
	span.SetAttributes(attribute.Int("review.response_bytes", len(result)))
	return result, nil
}
