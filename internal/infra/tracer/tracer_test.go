package tracer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"aitools/internal/infra/config"
)

// recordSpans installs an in-memory provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestSetupNoopVariants(t *testing.T) {
	for _, cfg := range []config.TracerConfig{
		{Enabled: false, Exporter: "stdout"},
		{Enabled: true, Exporter: "noop"},
		{Enabled: true},
	} {
		shutdown, err := Setup(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Setup(%+v): %v", cfg, err)
		}
		if _, ok := otel.GetTracerProvider().(noop.TracerProvider); !ok {
			t.Errorf("Setup(%+v) installed %T, want noop", cfg, otel.GetTracerProvider())
		}
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	}
}

func TestSetupFileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "spans.json")
	shutdown, err := Setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: "file", Endpoint: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	_, span := Start(context.Background(), "invocation.submit", Tool("translator"))
	End(span, nil)
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace file: %v", err)
	}
	if len(data) == 0 {
		t.Error("trace file is empty")
	}
	otel.SetTracerProvider(noop.NewTracerProvider())
}

func TestSetupRejectsBadExporters(t *testing.T) {
	if _, err := Setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: "jaeger"}); err == nil {
		t.Error("expected error for unsupported exporter")
	}
	if _, err := Setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: "file"}); err == nil {
		t.Error("expected error for file exporter without endpoint")
	}
}

func TestEndOutcomes(t *testing.T) {
	rec := recordSpans(t)

	_, ok := Start(context.Background(), "ok", Token("01J"))
	End(ok, nil)
	_, failed := Start(context.Background(), "failed")
	End(failed, errors.New("provider down"))
	_, cancelled := Start(context.Background(), "cancelled")
	End(cancelled, fmt.Errorf("chat: %w", context.Canceled))

	spans := rec.Ended()
	if len(spans) != 3 {
		t.Fatalf("ended spans = %d, want 3", len(spans))
	}
	if got := spans[0].Status().Code; got != codes.Ok {
		t.Errorf("ok span status = %v", got)
	}
	if got := spans[1].Status().Code; got != codes.Error {
		t.Errorf("failed span status = %v", got)
	}
	if len(spans[1].Events()) == 0 {
		t.Error("failed span should record the error event")
	}
	if got := spans[2].Status().Code; got != codes.Unset {
		t.Errorf("cancelled span status = %v, want Unset", got)
	}
	if !hasAttr(spans[2].Attributes(), Cancelled(true)) {
		t.Errorf("cancelled span attributes = %v", spans[2].Attributes())
	}
}

func TestAttributeHelpers(t *testing.T) {
	if kv := Provider("openai"); kv.Key != KeyProvider || kv.Value.AsString() != "openai" {
		t.Errorf("Provider = %v", kv)
	}
	if kv := Stale(true); kv.Key != KeyStale || !kv.Value.AsBool() {
		t.Errorf("Stale = %v", kv)
	}
	usage := Usage(12, 30)
	if len(usage) != 2 || usage[0].Value.AsInt64() != 12 || usage[1].Value.AsInt64() != 30 {
		t.Errorf("Usage = %v", usage)
	}
}

func hasAttr(attrs []attribute.KeyValue, want attribute.KeyValue) bool {
	for _, kv := range attrs {
		if kv == want {
			return true
		}
	}
	return false
}
