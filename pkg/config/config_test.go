package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup (testing.T.Chdir needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Analysis.CoveragePercent != 80 {
		t.Errorf("coverage default = %v", cfg.Analysis.CoveragePercent)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("debounce default = %v", cfg.Watch.Debounce)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry enabled by default")
	}
}

func TestMergeKeepsDefaultsForZeroValues(t *testing.T) {
	m := NewManager()
	m.merge(&Config{
		Analysis: AnalysisConfig{CoveragePercent: 95},
	})

	cfg := m.Get()
	if cfg.Analysis.CoveragePercent != 95 {
		t.Errorf("coverage = %v, want 95", cfg.Analysis.CoveragePercent)
	}
	// Untouched fields keep their defaults.
	if cfg.Export.Format != "none" {
		t.Errorf("export format = %q", cfg.Export.Format)
	}
	if cfg.Analysis.MaxDiagnostics != 25 {
		t.Errorf("max diagnostics = %d", cfg.Analysis.MaxDiagnostics)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DECLARELENS_COVERAGE", "42.5")
	t.Setenv("DECLARELENS_EXPORT_FORMAT", "xlsx")
	t.Setenv("DECLARELENS_TELEMETRY", "true")

	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	cfg := m.Get()
	if cfg.Analysis.CoveragePercent != 42.5 {
		t.Errorf("coverage = %v", cfg.Analysis.CoveragePercent)
	}
	if cfg.Export.Format != "xlsx" {
		t.Errorf("export format = %q", cfg.Export.Format)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("telemetry not enabled from env")
	}

	t.Setenv("DECLARELENS_COVERAGE", "250")
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if m.Get().Analysis.CoveragePercent == 250 {
		t.Error("out-of-range coverage accepted")
	}
}

func TestLoadTracksProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, ".declarelens.yaml")
	if err := os.WriteFile(path, []byte("analysis:\n  coverage_percent: 60\n"), 0644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if m.Get().Analysis.CoveragePercent != 60 {
		t.Errorf("coverage = %v, want 60", m.Get().Analysis.CoveragePercent)
	}

	found := false
	for _, p := range m.GetPaths() {
		if p == path {
			found = true
		}
	}
	if !found {
		t.Errorf("GetPaths() = %v, missing %s", m.GetPaths(), path)
	}
}

func TestLoadReportsMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".declarelens.yaml"), []byte("analysis: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	m := NewManager()
	if err := m.Load(); err == nil {
		t.Fatal("Load() = nil, want error for malformed config")
	}
	// The manager stays usable with defaults.
	if m.Get().Analysis.CoveragePercent != 80 {
		t.Errorf("coverage = %v, want default 80", m.Get().Analysis.CoveragePercent)
	}
}

func TestSaveWritesUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	m := NewManager()
	path, err := m.Save()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(home, ".declarelens", "config.yaml")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Analysis.CoveragePercent != 80 {
		t.Errorf("saved coverage = %v, want 80", cfg.Analysis.CoveragePercent)
	}
}
