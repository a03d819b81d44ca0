package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Command-level instruments for the two artifact operations. Created lazily
// on first use so `cv list` never touches the meter.
var (
	opsOnce        sync.Once
	exportCounter  metric.Int64Counter
	exportBytes    metric.Int64Counter
	importCounter  metric.Int64Counter
	importRemapped metric.Int64Counter
)

func initOpsInstruments() {
	m := Meter(instrumentationScope)
	exportCounter, _ = m.Int64Counter("cv.export.total",
		metric.WithDescription("Completed export operations"),
	)
	exportBytes, _ = m.Int64Counter("cv.export.bytes",
		metric.WithDescription("Total bytes written to export artifacts"),
		metric.WithUnit("By"),
	)
	importCounter, _ = m.Int64Counter("cv.import.recipes",
		metric.WithDescription("Recipes brought in by import operations"),
	)
	importRemapped, _ = m.Int64Counter("cv.import.remapped",
		metric.WithDescription("Imported recipes that needed a fresh id"),
	)
}

// RecordExport counts a completed export.
func RecordExport(ctx context.Context, recipes, bytes int) {
	if !Enabled() {
		return
	}
	opsOnce.Do(initOpsInstruments)
	attrs := metric.WithAttributes(attribute.Int("cv.export.recipes", recipes))
	exportCounter.Add(ctx, 1, attrs)
	exportBytes.Add(ctx, int64(bytes))
}

// RecordImport counts a completed import.
func RecordImport(ctx context.Context, mode string, imported, remapped int) {
	if !Enabled() {
		return
	}
	opsOnce.Do(initOpsInstruments)
	attrs := metric.WithAttributes(attribute.String("cv.import.mode", mode))
	importCounter.Add(ctx, int64(imported), attrs)
	importRemapped.Add(ctx, int64(remapped), attrs)
}
