package observability

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/trainforge/trainforge-backend/internal/platform/envutil"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

// otelSettings is the OTEL_* env surface, read once at init.
type otelSettings struct {
	enabled     bool
	endpoint    string
	insecure    bool
	headers     map[string]string
	sampleRatio float64
}

func otelSettingsFromEnv() otelSettings {
	ratio := envutil.Float("OTEL_SAMPLER_RATIO", 0.1)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return otelSettings{
		enabled:     envutil.Bool("OTEL_ENABLED", false),
		endpoint:    envutil.Str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		headers:     parseHeaderList(envutil.Str("OTEL_EXPORTER_OTLP_HEADERS", "")),
		sampleRatio: ratio,
	}
}

// parseHeaderList splits "k1=v1,k2=v2" into a map, dropping malformed pairs.
func parseHeaderList(raw string) map[string]string {
	headers := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if key == "" || val == "" {
			continue
		}
		headers[key] = val
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

var (
	otelOnce     sync.Once
	otelShutdown func(context.Context) error
)

// InitOTel installs the global tracer provider and propagators when
// OTEL_ENABLED is set. It never fails startup: a broken exporter degrades to
// stdout traces, and when disabled the returned shutdown func is nil.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	otelOnce.Do(func() {
		st := otelSettingsFromEnv()
		if !st.enabled {
			return
		}
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "trainforge"
		}

		res, err := resource.New(
			ctx,
			resource.WithAttributes(
				semconv.ServiceNameKey.String(serviceName),
				semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
				attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
			),
		)
		if err != nil && log != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(st.sampleRatio))
		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sampler),
			sdktrace.WithResource(res),
		}
		if exporter := newTraceExporter(ctx, log, st); exporter != nil {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}

		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		if log != nil {
			log.Info("otel tracing initialized", "service", serviceName, "endpoint", st.endpoint)
		}
	})
	return otelShutdown
}

// newTraceExporter prefers the OTLP-HTTP endpoint and falls back to pretty
// stdout traces when none is configured. Exporter failures are logged, not
// fatal.
func newTraceExporter(ctx context.Context, log *logger.Logger, st otelSettings) sdktrace.SpanExporter {
	if st.endpoint != "" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(st.endpoint)}
		if st.insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if st.headers != nil {
			opts = append(opts, otlptracehttp.WithHeaders(st.headers))
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			if log != nil {
				log.Warn("otel OTLP exporter init failed (continuing without export)", "error", err)
			}
			return nil
		}
		return exp
	}

	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		if log != nil {
			log.Warn("otel stdout exporter init failed (continuing without export)", "error", err)
		}
		return nil
	}
	if log != nil {
		log.Warn("otel using stdout exporter (no OTLP endpoint configured)")
	}
	return exp
}
