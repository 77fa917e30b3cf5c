package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/medstore/internal/common/constants"
)

var Tracer = otel.Tracer(
	constants.APP_MAIN_MEDSTORE,
	trace.WithInstrumentationAttributes(semconv.ServiceName(constants.APP_MAIN_MEDSTORE)),
)

// RecordError marks span as failed. Spans of the no-op provider are skipped.
func RecordError(err error, span trace.Span) {
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
