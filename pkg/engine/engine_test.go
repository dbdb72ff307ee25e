package engine

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/declarelens/declarelens/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const testModel = `Response[Register, Approve]
Init[Register]
`

const testDetails = `Case;Constraint;Result
c1;Response:[Register, Approve];violation
c1;Init:[Register];fulfillment
c2;Response:[Register, Approve];fulfillment
c2;Init:[Register];fulfillment
`

const testReplay = `Case;Insertions;Deletions;Fitness
c1;1;0;0.8
c2;0;0;1.0
`

const testLog = `<log>
  <trace>
    <string key="concept:name" value="c1"/>
    <event>
      <string key="concept:name" value="Register"/>
      <date key="time:timestamp" value="2024-03-01T10:00:00"/>
    </event>
    <event>
      <string key="concept:name" value="Ship"/>
      <date key="time:timestamp" value="2024-03-01T11:00:00"/>
    </event>
  </trace>
  <trace>
    <string key="concept:name" value="c2"/>
    <event>
      <string key="concept:name" value="Register"/>
      <date key="time:timestamp" value="2024-03-02T10:00:00"/>
    </event>
    <event>
      <string key="concept:name" value="Approve"/>
      <date key="time:timestamp" value="2024-03-02T11:00:00"/>
    </event>
  </trace>
</log>`

const testTags = `constraints:
  "Response[Register, Approve]":
    priority: CRITICAL
    compliance: true
    group: approvals
`

func TestAnalyzeFullRun(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Model:       writeFile(t, dir, "model.decl", testModel),
		Details:     writeFile(t, dir, "details.csv", testDetails),
		Replay:      writeFile(t, dir, "replay.csv", testReplay),
		Log:         writeFile(t, dir, "log.xes", testLog),
		Tags:        writeFile(t, dir, "tags.yaml", testTags),
		CoveragePct: 100,
	}

	run, err := Analyze(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	d := run.Dashboard

	if d.RunID == "" {
		t.Error("run id missing")
	}
	if len(d.Constraints) != 2 {
		t.Fatalf("got %d constraints", len(d.Constraints))
	}
	if len(d.Traces) != 2 {
		t.Fatalf("got %d traces", len(d.Traces))
	}

	// Replay order first: c1 then c2.
	if d.Traces[0].CaseID != "c1" || d.Traces[0].Fitness != 0.8 {
		t.Errorf("trace 0 = %+v", d.Traces[0].TraceStatistics)
	}
	if len(d.Traces[0].Events) != 2 {
		t.Errorf("trace events not attached")
	}

	// The tag reaches the overview KPIs.
	if d.Overview.CriticalViolations != 1 {
		t.Errorf("critical violations = %d", d.Overview.CriticalViolations)
	}
	if d.Overview.TotalVariants != 2 {
		t.Errorf("variants = %d", d.Overview.TotalVariants)
	}
	if len(d.Groups) != 1 || d.Groups[0].Name != "approvals" {
		t.Errorf("groups = %+v", d.Groups)
	}

	if len(d.Flow.Graph.Nodes) == 0 || len(d.Flow.Graph.Edges) == 0 {
		t.Error("flow graph empty")
	}
	if d.CoViolation.At("Response[Register, Approve]", "Response[Register, Approve]") != 1 {
		t.Error("co-violation diagonal wrong")
	}
}

func TestAnalyzeModelMissingIsFatal(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{Model: filepath.Join(dir, "nope.decl")}

	_, err := Analyze(context.Background(), in)
	if err == nil {
		t.Fatal("missing model did not fail")
	}
	if !errors.IsCode(err, errors.CodeModelMissing) {
		t.Errorf("error code = %v", errors.GetCode(err))
	}
	if !errors.IsFatal(err) {
		t.Error("missing model not fatal")
	}
}

func TestAnalyzeEmptyModelIsFatal(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{Model: writeFile(t, dir, "model.decl", "// nothing here\n")}

	_, err := Analyze(context.Background(), in)
	if !errors.IsCode(err, errors.CodeModelUnparsable) {
		t.Errorf("error = %v", err)
	}
}

func TestAnalyzeOptionalInputsDegrade(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{
		Model:   writeFile(t, dir, "model.decl", testModel),
		Details: filepath.Join(dir, "absent.csv"),
		Log:     filepath.Join(dir, "absent.xes"),
	}

	run, err := Analyze(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Dashboard.Constraints) != 2 {
		t.Errorf("constraints = %d", len(run.Dashboard.Constraints))
	}
	if len(run.Dashboard.Traces) != 0 {
		t.Errorf("traces = %d, want 0", len(run.Dashboard.Traces))
	}

	// Each absent optional input leaves a diagnostic.
	if run.Diagnostics.Count() != 2 {
		t.Errorf("diagnostics = %d: %v", run.Diagnostics.Count(), run.Diagnostics.Entries())
	}
}

func TestAnalyzeGzipInput(t *testing.T) {
	dir := t.TempDir()
	gzPath := filepath.Join(dir, "details.csv.gz")

	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(testDetails)); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	f.Close()

	in := Inputs{
		Model:   writeFile(t, dir, "model.decl", testModel),
		Details: gzPath,
	}
	run, err := Analyze(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Dashboard.Traces) != 2 {
		t.Errorf("traces = %d, want 2", len(run.Dashboard.Traces))
	}
}

func TestAnalyzeCanceledContext(t *testing.T) {
	dir := t.TempDir()
	in := Inputs{Model: writeFile(t, dir, "model.decl", testModel)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Analyze(ctx, in); err == nil {
		t.Error("canceled context did not fail")
	}
}
