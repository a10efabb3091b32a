// Package observability wires process-wide logging: a severity-filtered
// slog.Logger backed by the OpenTelemetry logs SDK, installed as the
// default logger before any other component starts.
package observability

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const loggerName = "llm-openai-proxy"

// Instrument builds the otel logs pipeline (stdout exporter, batching
// processor, severity filter) and installs it as the default slog logger.
// level is the minimum severity to emit; format selects the stdout
// layout: "json" (or empty) writes compact JSON records, "text" writes the
// same JSON records pretty-printed.
func Instrument(level slog.Level, format string) error {
	exporter, err := newExporter(format)
	if err != nil {
		return fmt.Errorf("creating log exporter: %w", err)
	}

	batched := sdklog.NewBatchProcessor(exporter)
	filtered := minsev.NewLogProcessor(batched, minsev.Severity(severityFromLevel(level)))

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(filtered),
	)

	logger := slog.New(otelslog.NewHandler(loggerName,
		otelslog.WithLoggerProvider(provider),
	))
	slog.SetDefault(logger)

	return nil
}

func newExporter(format string) (sdklog.Exporter, error) {
	switch format {
	case "json", "":
		return stdoutlog.New()
	case "text":
		return stdoutlog.New(stdoutlog.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}

// severityFromLevel maps slog's level scale onto the otel log severity
// scale (TRACE1..FATAL4, 1-24); only the four slog levels this module uses
// have a dedicated mapping, each anchored on its "1" severity.
func severityFromLevel(level slog.Level) otellog.Severity {
	switch {
	case level <= slog.LevelDebug:
		return otellog.SeverityDebug1
	case level <= slog.LevelInfo:
		return otellog.SeverityInfo1
	case level <= slog.LevelWarn:
		return otellog.SeverityWarn1
	default:
		return otellog.SeverityError1
	}
}
