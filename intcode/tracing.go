package intcode

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/colorfulnotion/intcode/intcode"

// startRunSpan opens the span covering one Run. With no tracer provider
// installed the global provider is a no-op.
func startRunSpan(ctx context.Context, vm *VM) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "intcode.run",
		trace.WithAttributes(
			attribute.String("intcode.id", vm.Identifier),
			attribute.Int("intcode.words", vm.mem.Len()),
		))
}

func endRunSpan(span trace.Span, vm *VM, err error) {
	span.SetAttributes(
		attribute.Int64("intcode.steps", int64(vm.Steps())),
		attribute.Int64("intcode.pc", vm.pc),
		attribute.String("intcode.state", vm.State().String()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
