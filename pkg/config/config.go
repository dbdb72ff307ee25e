// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all DeclareLens configuration.
type Config struct {
	Version int `yaml:"version"`

	Analysis  AnalysisConfig  `yaml:"analysis"`
	Export    ExportConfig    `yaml:"export"`
	Watch     WatchConfig     `yaml:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// AnalysisConfig controls aggregation and flow-graph defaults.
type AnalysisConfig struct {
	// CoveragePercent is the default variant-coverage threshold (0-100)
	// for the process flow graph.
	CoveragePercent float64 `yaml:"coverage_percent"`

	// MaxDiagnostics caps the diagnostics printed after a run; the full
	// count is always reported. 0 = print all.
	MaxDiagnostics int `yaml:"max_diagnostics"`
}

// ExportConfig controls dashboard export defaults.
type ExportConfig struct {
	// Format is the default export format: xlsx | arrow | none.
	Format string `yaml:"format"`

	// Directory receives exported files; empty means current directory.
	Directory string `yaml:"directory"`
}

// WatchConfig controls watch-mode re-analysis.
type WatchConfig struct {
	// Debounce is the quiet period after a file change before re-running.
	Debounce time.Duration `yaml:"debounce"`
}

// TelemetryConfig for optional OTLP trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Analysis: AnalysisConfig{
			CoveragePercent: 80,
			MaxDiagnostics:  25,
		},
		Export: ExportConfig{
			Format: "none",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "localhost:4317",
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{config: Default()}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = Default()
	m.paths = nil

	for _, path := range m.configPaths() {
		if err := m.loadFile(path); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
			continue
		}
		m.paths = append(m.paths, path)
	}

	m.loadEnv()
	return nil
}

// configPaths returns config file paths in priority order, lowest first.
func (m *Manager) configPaths() []string {
	var paths []string

	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/declarelens/config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".declarelens", "config.yaml"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".declarelens.yaml"))
	}
	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	if src.Analysis.CoveragePercent != 0 {
		m.config.Analysis.CoveragePercent = src.Analysis.CoveragePercent
	}
	if src.Analysis.MaxDiagnostics != 0 {
		m.config.Analysis.MaxDiagnostics = src.Analysis.MaxDiagnostics
	}

	if src.Export.Format != "" {
		m.config.Export.Format = src.Export.Format
	}
	if src.Export.Directory != "" {
		m.config.Export.Directory = src.Export.Directory
	}

	if src.Watch.Debounce != 0 {
		m.config.Watch.Debounce = src.Watch.Debounce
	}

	if src.Telemetry.Enabled {
		m.config.Telemetry.Enabled = true
	}
	if src.Telemetry.Endpoint != "" {
		m.config.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("DECLARELENS_COVERAGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 100 {
			m.config.Analysis.CoveragePercent = f
		}
	}
	if v := os.Getenv("DECLARELENS_EXPORT_FORMAT"); v != "" {
		m.config.Export.Format = v
	}
	if v := os.Getenv("DECLARELENS_EXPORT_DIR"); v != "" {
		m.config.Export.Directory = v
	}
	if v := os.Getenv("DECLARELENS_TELEMETRY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m.config.Telemetry.Enabled = b
		}
	}
	if v := os.Getenv("DECLARELENS_OTLP_ENDPOINT"); v != "" {
		m.config.Telemetry.Endpoint = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file and returns
// the path written.
func (m *Manager) Save() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(home, ".declarelens")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return "", err
	}
	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager. A broken config
// file is reported on stderr and the manager falls back to defaults.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		if err := globalManager.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v, using defaults\n", err)
		}
	})
	return globalManager
}
