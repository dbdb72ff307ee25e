package telemetry

import (
	"context"
	"fmt"
	"testing"
)

func TestDefaultOTLPConfig(t *testing.T) {
	cfg := DefaultOTLPConfig("declarelens")
	if cfg.ServiceName != "declarelens" {
		t.Errorf("service name = %q", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4317" {
		t.Errorf("endpoint = %q", cfg.Endpoint)
	}
	if cfg.SamplingRatio != 1.0 {
		t.Errorf("sampling ratio = %v", cfg.SamplingRatio)
	}
}

func TestRecordErrorWithoutSpan(t *testing.T) {
	// With no provider installed the context carries a no-op span;
	// recording must be safe.
	RecordError(context.Background(), fmt.Errorf("load failed"))
}

func TestExporterNotInitialized(t *testing.T) {
	e := NewOTLPExporter(DefaultOTLPConfig("declarelens"))
	if e.IsInitialized() {
		t.Error("exporter reports initialized before Init")
	}
}
