// DeclareLens - conformance analytics for declarative process models.
// Merges Declare models, replay statistics, and event logs into a
// violation dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/declarelens/declarelens/pkg/config"
	"github.com/declarelens/declarelens/pkg/declare"
	"github.com/declarelens/declarelens/pkg/engine"
	"github.com/declarelens/declarelens/pkg/errors"
	"github.com/declarelens/declarelens/pkg/export"
	"github.com/declarelens/declarelens/pkg/parser"
	"github.com/declarelens/declarelens/pkg/telemetry"
	"github.com/declarelens/declarelens/pkg/tui"
	"github.com/declarelens/declarelens/pkg/util"
	"github.com/declarelens/declarelens/pkg/watch"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	modelFile   string
	statsFile   string
	detailsFile string
	replayFile  string
	logFile     string
	alignedFile string
	tagsFile    string

	coverageFlag   float64
	exportFormat   string
	exportDir      string
	verbose        bool
	telemetryFlag  bool
	maxConstraints int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if lensErr, ok := err.(*errors.LensError); ok && verbose {
			fmt.Fprint(os.Stderr, lensErr.FormatStack())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "declarelens",
	Short: "DeclareLens - Declare conformance analytics",
	Long: `DeclareLens merges a Declare constraint model with replay statistics
and event logs into a conformance dashboard: per-constraint violation
rates, per-trace alignments, tag-driven KPIs, and a variant-filtered
process flow graph.

Only the model file is required; every other input degrades gracefully.`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis and print the dashboard",
	Long: `Run a full analysis over the given inputs.

Examples:
  declarelens analyze -m model.decl
  declarelens analyze -m model.decl -d details.csv -r replay.csv -l log.xes
  declarelens analyze -m model.decl -l log.xes.gz --coverage 95
  declarelens analyze -m model.decl -d details.csv --export xlsx`,
	RunE: runAnalyze,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about a model or event log file",
	RunE:  runInfo,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the analysis whenever an input file changes",
	RunE:  runWatch,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the effective configuration to the user config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Global().Save()
		if err != nil {
			return err
		}
		fmt.Printf("  wrote %s\n", path)
		return nil
	},
}

func init() {
	cfg := config.Global().Get()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	for _, cmd := range []*cobra.Command{analyzeCmd, watchCmd} {
		cmd.Flags().StringVarP(&modelFile, "model", "m", "", "Declare model file (required)")
		cmd.Flags().StringVarP(&statsFile, "stats", "s", "", "Per-constraint statistics CSV")
		cmd.Flags().StringVarP(&detailsFile, "details", "d", "", "Trace-constraint detail CSV")
		cmd.Flags().StringVarP(&replayFile, "replay", "r", "", "Replay overview CSV")
		cmd.Flags().StringVarP(&logFile, "log", "l", "", "Raw event log (XES)")
		cmd.Flags().StringVarP(&alignedFile, "aligned-log", "a", "", "Model-aligned event log (XES)")
		cmd.Flags().StringVarP(&tagsFile, "tags", "t", "", "Constraint tag YAML")
		cmd.Flags().Float64Var(&coverageFlag, "coverage", cfg.Analysis.CoveragePercent, "Variant coverage percent for the flow graph (0-100)")
		cmd.Flags().StringVar(&exportFormat, "export", cfg.Export.Format, "Export format (xlsx, arrow, none)")
		cmd.Flags().StringVar(&exportDir, "export-dir", cfg.Export.Directory, "Export output directory")
		cmd.Flags().BoolVar(&telemetryFlag, "telemetry", cfg.Telemetry.Enabled, "Enable OTLP trace export")
		cmd.Flags().IntVar(&maxConstraints, "max-constraints", 0, "Max constraint rows to print (0 = all)")
		cmd.MarkFlagRequired("model")
	}

	infoCmd.Flags().StringVarP(&modelFile, "model", "m", "", "Declare model file")
	infoCmd.Flags().StringVarP(&logFile, "log", "l", "", "Event log file (XES)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func inputs() engine.Inputs {
	return engine.Inputs{
		Model:       modelFile,
		Stats:       statsFile,
		Details:     detailsFile,
		Replay:      replayFile,
		Log:         logFile,
		AlignedLog:  alignedFile,
		Tags:        tagsFile,
		CoveragePct: coverageFlag,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	if verbose {
		for _, p := range config.Global().GetPaths() {
			fmt.Fprintf(os.Stderr, "config: loaded %s\n", p)
		}
	}

	if telemetryFlag {
		cfg := telemetry.DefaultOTLPConfig("declarelens")
		cfg.Endpoint = config.Global().Get().Telemetry.Endpoint
		cfg.ServiceVersion = version
		shutdown, err := telemetry.InitOTLP(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telemetry disabled: %v\n", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	return analyzeOnce(ctx)
}

func analyzeOnce(ctx context.Context) error {
	run, err := engine.Analyze(ctx, inputs())
	if err != nil {
		return err
	}

	reporter := &tui.Reporter{
		Out:            os.Stdout,
		MaxConstraints: maxConstraints,
		MaxDiagnostics: config.Global().Get().Analysis.MaxDiagnostics,
	}
	reporter.PrintDashboard(run.Dashboard)
	reporter.PrintDiagnostics(run.Diagnostics)

	return exportDashboard(run)
}

func exportDashboard(run *engine.Run) error {
	dir := exportDir
	if dir == "" {
		dir = "."
	}

	switch exportFormat {
	case "", "none":
		return nil

	case "xlsx":
		path := filepath.Join(dir, "declarelens-"+run.Dashboard.RunID+".xlsx")
		bar := tui.ShowProgress(int64(len(run.Dashboard.Traces)), "  exporting traces")
		err := export.WriteXLSX(run.Dashboard, path, func(int) { bar.Add(1) })
		bar.Finish()
		if err != nil {
			return err
		}
		fmt.Printf("  exported %s\n", path)
		return nil

	case "arrow":
		constraintPath := filepath.Join(dir, "declarelens-constraints-"+run.Dashboard.RunID+".arrow")
		tracePath := filepath.Join(dir, "declarelens-traces-"+run.Dashboard.RunID+".arrow")
		if err := export.WriteArrowIPC(run.Dashboard, constraintPath, tracePath); err != nil {
			return err
		}
		fmt.Printf("  exported %s and %s\n", constraintPath, tracePath)
		return nil

	default:
		return errors.New(errors.CodeExportFailed, "unknown export format").
			WithContext("format", exportFormat)
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	if modelFile == "" && logFile == "" {
		return fmt.Errorf("provide --model or --log")
	}

	if modelFile != "" {
		if err := printModelInfo(modelFile); err != nil {
			return err
		}
	}
	if logFile != "" {
		if err := printLogInfo(logFile); err != nil {
			return err
		}
	}
	return nil
}

func printModelInfo(path string) error {
	r, cleanup, err := util.OpenFile(path)
	if err != nil {
		return err
	}
	defer cleanup()

	diags := &parser.Diagnostics{}
	constraints, err := declare.ParseModel(r, path, diags)
	if err != nil {
		return err
	}

	byTemplate := make(map[string]int)
	for _, c := range constraints {
		byTemplate[c.Type]++
	}

	fmt.Printf("Model: %s\n", path)
	fmt.Printf("  %d constraints, %d skipped lines\n", len(constraints), diags.Count())
	for _, t := range declare.Templates() {
		if n := byTemplate[t.Name]; n > 0 {
			fmt.Printf("  %-24s %d\n", t.Display, n)
		}
	}
	return nil
}

func printLogInfo(path string) error {
	r, cleanup, err := util.OpenFile(path)
	if err != nil {
		return err
	}
	defer cleanup()

	diags := &parser.Diagnostics{}
	log, err := parser.ReadEventLog(r, path, diags)
	if err != nil {
		return err
	}

	events := 0
	variants := make(map[string]bool)
	activities := make(map[string]bool)
	for i := range log.Cases {
		c := &log.Cases[i]
		events += len(c.Events)
		variants[c.Variant()] = true
		for _, e := range c.Events {
			activities[e.Activity] = true
		}
	}

	fmt.Printf("Log: %s\n", path)
	fmt.Printf("  %d traces, %d events, %d variants, %d activities\n",
		len(log.Cases), events, len(variants), len(activities))
	if diags.Count() > 0 {
		fmt.Printf("  %d skipped rows\n", diags.Count())
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	if err := analyzeOnce(ctx); err != nil {
		return err
	}

	watcher, err := watch.NewWatcher(config.Global().Get().Watch.Debounce)
	if err != nil {
		return err
	}
	defer watcher.Close()

	paths := []string{modelFile, statsFile, detailsFile, replayFile, logFile, alignedFile, tagsFile}
	for _, p := range paths {
		if err := watcher.Watch(p); err != nil {
			// Optional inputs may not exist yet; keep watching the rest.
			fmt.Fprintf(os.Stderr, "not watching %s: %v\n", p, err)
		}
	}

	watcher.OnChange = func(path string) error {
		fmt.Printf("\n  %s changed, re-running\n", path)
		return analyzeOnce(ctx)
	}
	watcher.OnError = func(path string, err error) {
		fmt.Fprintf(os.Stderr, "watch error (%s): %v\n", path, err)
	}

	fmt.Println("  watching for changes, Ctrl-C to stop")
	err = watcher.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
