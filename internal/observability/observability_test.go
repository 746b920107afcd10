package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "kumatter-test", Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	span, ctx := NewSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	span.SetError(errors.New("boom"))
	span.End()
}

func TestInitTracing_Stdout(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{
		ServiceName:    "kumatter-test",
		ServiceVersion: "test",
		Environment:    "test",
		Enabled:        true,
		Exporter:       "stdout",
		SamplerRatio:   1.0,
	})
	require.NoError(t, err)

	span, ctx := NewSpan(context.Background(), "timeline.project")
	assert.True(t, SpanFromContext(ctx).span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(ctx))

	_, _ = InitTracing(TracingConfig{ServiceName: "kumatter-test"})
}

// recordSpans points Tracer at an in-memory recorder for the duration of t.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := Tracer
	Tracer = tp.Tracer("kumatter-test")
	t.Cleanup(func() {
		Tracer = prev
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestTraceStoreRead(t *testing.T) {
	rec := recordSpans(t)
	parent, ctx := NewSpan(context.Background(), "timeline.project")

	ids, err := TraceStoreRead(ctx, "follows", "followee_ids", func(ctx context.Context) ([]uint, error) {
		assert.True(t, SpanFromContext(ctx).span.SpanContext().IsValid())
		return []uint{2, 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 3}, ids)

	boom := errors.New("store unavailable")
	_, err = TraceStoreRead(ctx, "likes", "counts_by_posts", func(context.Context) (map[uint]int64, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	parent.End()

	spans := rec.Ended()
	require.Len(t, spans, 3)

	ok, failed := spans[0], spans[1]
	assert.Equal(t, "follows.followee_ids", ok.Name())
	assert.Equal(t, parent.span.SpanContext().SpanID(), ok.Parent().SpanID())
	assert.Contains(t, ok.Attributes(), AttrStore.String("follows"))
	assert.Equal(t, codes.Unset, ok.Status().Code)

	assert.Equal(t, "likes.counts_by_posts", failed.Name())
	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Equal(t, "store unavailable", failed.Status().Description)
}

func TestAnnotateToggle(t *testing.T) {
	rec := recordSpans(t)
	span, ctx := NewSpan(context.Background(), "POST /api/likes/add")
	before := testutil.ToFloat64(ToggleOperations.WithLabelValues("follow", "noop"))

	AnnotateToggle(ctx, "follow", false)
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), AttrChanged.Bool(false))
	assert.Equal(t, before+1, testutil.ToFloat64(ToggleOperations.WithLabelValues("follow", "noop")))
}

func TestRecordToggle(t *testing.T) {
	before := testutil.ToFloat64(ToggleOperations.WithLabelValues("like", "changed"))
	RecordToggle("like", true)
	RecordToggle("like", false)
	assert.Equal(t, before+1, testutil.ToFloat64(ToggleOperations.WithLabelValues("like", "changed")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(ToggleOperations.WithLabelValues("like", "noop")), 1.0)
}

func TestObserveTimeline(t *testing.T) {
	ObserveTimeline("all", time.Now(), 3)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(TimelineProjectionLatency), 1)
}
