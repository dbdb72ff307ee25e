package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/declarelens/declarelens/internal/model"
)

func sampleDashboard() *model.Dashboard {
	return &model.Dashboard{
		RunID: "test-run",
		Constraints: []model.DashboardConstraint{
			{
				DeclareConstraint: model.DeclareConstraint{
					ID:         "Response[A, B]",
					Type:       "Response",
					Activities: []string{"A", "B"},
				},
				Statistics: model.ConstraintStatistics{
					Activations: 10, Fulfillments: 7, Violations: 3,
				},
				ViolationRate: 0.3,
				Severity:      model.SeverityMedium,
			},
		},
		Traces: []model.DashboardTrace{
			{
				TraceStatistics:     model.TraceStatistics{CaseID: "case-1", Fitness: 0.9},
				Violations:          1,
				ViolatedConstraints: []string{"Response[A, B]"},
			},
			{
				TraceStatistics: model.TraceStatistics{CaseID: "case-2", Fitness: 1.0},
			},
			{
				TraceStatistics: model.TraceStatistics{CaseID: "case-3", Fitness: 0.5, Insertions: 2},
			},
		},
		CoViolation: model.CoViolationMatrix{
			ConstraintIDs: []string{"Response[A, B]"},
			Counts:        [][]int64{{1}},
		},
	}
}

func TestWriteXLSXSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteXLSX(sampleDashboard(), path, nil); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	want := []string{sheetOverview, sheetConstraints, sheetTraces, sheetCoViolation}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("sheet[%d] = %q, want %q", i, got[i], name)
		}
	}

	rows, err := f.GetRows(sheetTraces)
	if err != nil {
		t.Fatal(err)
	}
	// Header plus one row per trace.
	if len(rows) != 4 {
		t.Fatalf("trace rows = %d, want 4", len(rows))
	}
	if rows[1][0] != "case-1" {
		t.Errorf("first trace = %q, want case-1", rows[1][0])
	}
}

func TestWriteXLSXProgress(t *testing.T) {
	d := sampleDashboard()
	path := filepath.Join(t.TempDir(), "out.xlsx")

	var calls []int
	err := WriteXLSX(d, path, func(written int) {
		calls = append(calls, written)
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(calls) != len(d.Traces) {
		t.Fatalf("progress called %d times, want %d", len(calls), len(d.Traces))
	}
	for i, n := range calls {
		if n != i+1 {
			t.Errorf("call %d reported %d, want %d", i, n, i+1)
		}
	}
}
