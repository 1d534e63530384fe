package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := New("ingres-test", WithRegisterer(promclient.NewRegistry()), WithSpanProcessor(recorder))
	defer obs.Shutdown()

	_, span := obs.StartSpan(context.Background(), "interpret-query", attribute.String("language", "en"))
	EndSpan(span, errors.New("upstream down"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "interpret-query", ended[0].Name())
	assert.Len(t, ended[0].Events(), 1)
}

func TestRecordRequest_ExportsToRegistry(t *testing.T) {
	reg := promclient.NewRegistry()
	obs := New("ingres-test", WithRegisterer(reg))
	defer obs.Shutdown()

	obs.RecordRequest(context.Background(), "/api/chat", 200, 120*time.Millisecond)
	obs.RecordStep(context.Background(), "generate-response", "dataset")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "http_requests_total")
	assert.Contains(t, names, "http_request_duration_milliseconds")
	assert.Contains(t, names, "pipeline_steps_total")
	for _, name := range names {
		assert.NotContains(t, name, ".", "exported metric names use underscores")
	}
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	ctx, span := obs.StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	EndSpan(span, nil)
	obs.RecordRequest(context.Background(), "/health", 200, time.Millisecond)
	obs.Shutdown()
}
