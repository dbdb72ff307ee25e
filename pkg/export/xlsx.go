// Package export writes the dashboard bundle to analyst-facing formats:
// XLSX workbooks and Arrow IPC streams.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/declarelens/declarelens/internal/model"
	"github.com/declarelens/declarelens/pkg/declare"
	"github.com/declarelens/declarelens/pkg/errors"
)

// Sheet names of the workbook produced by WriteXLSX.
const (
	sheetOverview    = "Overview"
	sheetConstraints = "Constraints"
	sheetTraces      = "Traces"
	sheetCoViolation = "CoViolation"
)

// ProgressFunc is invoked once per exported trace row, so callers can
// drive a progress display for large logs. May be nil.
type ProgressFunc func(written int)

// WriteXLSX writes the dashboard as a four-sheet workbook.
func WriteXLSX(d *model.Dashboard, path string, progress ProgressFunc) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeOverviewSheet(f, d); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "writing overview sheet")
	}
	if err := writeConstraintSheet(f, d.Constraints); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "writing constraint sheet")
	}
	if err := writeTraceSheet(f, d.Traces, progress); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "writing trace sheet")
	}
	if err := writeCoViolationSheet(f, d.CoViolation); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "writing co-violation sheet")
	}

	// The default "Sheet1" is replaced by Overview.
	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "saving workbook").
			WithContext("path", path)
	}
	return nil
}

func writeOverviewSheet(f *excelize.File, d *model.Dashboard) error {
	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Run ID", d.RunID},
		{"Overall fitness", d.Overview.OverallFitness},
		{"Overall conformance", d.Overview.OverallConformance},
		{"Overall compliance", d.Overview.OverallCompliance},
		{"Overall quality", d.Overview.OverallQuality},
		{"Overall efficiency", d.Overview.OverallEfficiency},
		{"Critical violations", d.Overview.CriticalViolations},
		{"High priority violations", d.Overview.HighPriorityViolations},
		{"Total constraints", d.Overview.TotalConstraints},
		{"Total traces", d.Overview.TotalTraces},
		{"Total variants", d.Overview.TotalVariants},
	}
	return writeRows(f, sheetOverview, rows)
}

func writeConstraintSheet(f *excelize.File, constraints []model.DashboardConstraint) error {
	if _, err := f.NewSheet(sheetConstraints); err != nil {
		return err
	}

	rows := [][]interface{}{{
		"Constraint", "Template", "Activations", "Fulfillments", "Violations",
		"Vacuous fulfillments", "Vacuous violations", "Violation rate",
		"Severity", "Time window", "Group", "Description",
	}}
	for _, c := range constraints {
		rows = append(rows, []interface{}{
			declare.DisplayID(c.ID), c.Type,
			c.Statistics.Activations, c.Statistics.Fulfillments, c.Statistics.Violations,
			c.Statistics.VacuousFulfillments, c.Statistics.VacuousViolations,
			c.ViolationRate, string(c.Severity), c.TimeWindow, c.Tag.Group,
			c.Description,
		})
	}
	return writeRows(f, sheetConstraints, rows)
}

func writeTraceSheet(f *excelize.File, traces []model.DashboardTrace, progress ProgressFunc) error {
	if _, err := f.NewSheet(sheetTraces); err != nil {
		return err
	}

	rows := [][]interface{}{{
		"Case", "Fitness", "Insertions", "Deletions",
		"Activations", "Fulfillments", "Violations", "Violated constraints",
	}}
	for i, t := range traces {
		violated := ""
		for j, id := range t.ViolatedConstraints {
			if j > 0 {
				violated += "; "
			}
			violated += id
		}
		rows = append(rows, []interface{}{
			t.CaseID, t.Fitness, t.Insertions, t.Deletions,
			t.Activations, t.Fulfillments, t.Violations, violated,
		})
		if progress != nil {
			progress(i + 1)
		}
	}
	return writeRows(f, sheetTraces, rows)
}

func writeCoViolationSheet(f *excelize.File, m model.CoViolationMatrix) error {
	if _, err := f.NewSheet(sheetCoViolation); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(m.ConstraintIDs)+1)
	header = append(header, "")
	for _, id := range m.ConstraintIDs {
		header = append(header, id)
	}
	rows := [][]interface{}{header}

	for i, id := range m.ConstraintIDs {
		row := make([]interface{}, 0, len(m.ConstraintIDs)+1)
		row = append(row, id)
		for j := range m.ConstraintIDs {
			row = append(row, m.Counts[i][j])
		}
		rows = append(rows, row)
	}
	return writeRows(f, sheetCoViolation, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}
