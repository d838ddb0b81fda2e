// Package tracer configures OpenTelemetry and offers the span helpers used
// around invocations, capabilities and LLM calls.
package tracer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"aitools/internal/infra/config"
)

const tracerName = "aitools"

// Setup installs the global TracerProvider and returns its shutdown function.
// Exporters: "noop" (default), "stdout", and "file" which appends JSON spans
// to cfg.Endpoint so they do not interleave with the terminal UI.
func Setup(ctx context.Context, cfg config.TracerConfig) (func(context.Context) error, error) {
	noopShutdown := func(context.Context) error { return nil }

	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	}

	var (
		w      io.Writer
		closer func() error
	)
	switch cfg.Exporter {
	case "noop", "":
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	case "stdout":
		w = os.Stdout
	case "file":
		if cfg.Endpoint == "" {
			return nil, errors.New("file exporter needs tracer.endpoint set to a path")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Endpoint), 0o700); err != nil {
			return nil, fmt.Errorf("create trace directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Endpoint, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		w, closer = f, f.Close
	default:
		return nil, fmt.Errorf("unsupported exporter: %s", cfg.Exporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, fmt.Errorf("create %s exporter: %w", cfg.Exporter, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", tracerName))),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			err = errors.Join(err, closer())
		}
		return err
	}, nil
}

// Start opens a span on the aitools tracer.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End closes span with the outcome err. A cancelled context is not a
// failure: the caller disowned the work, so the span is only marked.
func End(span trace.Span, err error) {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, context.Canceled):
		span.SetAttributes(Cancelled(true))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Attribute keys shared by every span.
const (
	KeyTool       = attribute.Key("tool")
	KeyToken      = attribute.Key("invocation.token")
	KeyStale      = attribute.Key("invocation.stale")
	KeyCancelled  = attribute.Key("invocation.cancelled")
	KeyCapability = attribute.Key("capability.name")
	KeyRetryable  = attribute.Key("capability.retryable")
	KeyProvider   = attribute.Key("llm.provider")
	KeyModel      = attribute.Key("llm.model")
	KeyPrompt     = attribute.Key("llm.prompt_tokens")
	KeyCompletion = attribute.Key("llm.completion_tokens")
)

func Tool(id string) attribute.KeyValue        { return KeyTool.String(id) }
func Token(token string) attribute.KeyValue    { return KeyToken.String(token) }
func Stale(v bool) attribute.KeyValue          { return KeyStale.Bool(v) }
func Cancelled(v bool) attribute.KeyValue      { return KeyCancelled.Bool(v) }
func Capability(name string) attribute.KeyValue { return KeyCapability.String(name) }
func Retryable(v bool) attribute.KeyValue      { return KeyRetryable.Bool(v) }
func Provider(name string) attribute.KeyValue  { return KeyProvider.String(name) }
func Model(name string) attribute.KeyValue     { return KeyModel.String(name) }

// Usage returns the token counts of one LLM call.
func Usage(prompt, completion int) []attribute.KeyValue {
	return []attribute.KeyValue{KeyPrompt.Int(prompt), KeyCompletion.Int(completion)}
}
