package export

import (
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/declarelens/declarelens/internal/model"
	"github.com/declarelens/declarelens/pkg/errors"
)

// constraintSchema is the Arrow schema of the constraint table.
var constraintSchema = arrow.NewSchema([]arrow.Field{
	{Name: "constraint_id", Type: arrow.BinaryTypes.String},
	{Name: "template", Type: arrow.BinaryTypes.String},
	{Name: "activations", Type: arrow.PrimitiveTypes.Int64},
	{Name: "fulfillments", Type: arrow.PrimitiveTypes.Int64},
	{Name: "violations", Type: arrow.PrimitiveTypes.Int64},
	{Name: "vacuous_fulfillments", Type: arrow.PrimitiveTypes.Int64},
	{Name: "vacuous_violations", Type: arrow.PrimitiveTypes.Int64},
	{Name: "violation_rate", Type: arrow.PrimitiveTypes.Float64},
	{Name: "severity", Type: arrow.BinaryTypes.String},
}, nil)

// traceSchema is the Arrow schema of the trace table.
var traceSchema = arrow.NewSchema([]arrow.Field{
	{Name: "case_id", Type: arrow.BinaryTypes.String},
	{Name: "fitness", Type: arrow.PrimitiveTypes.Float64},
	{Name: "insertions", Type: arrow.PrimitiveTypes.Int64},
	{Name: "deletions", Type: arrow.PrimitiveTypes.Int64},
	{Name: "activations", Type: arrow.PrimitiveTypes.Int64},
	{Name: "fulfillments", Type: arrow.PrimitiveTypes.Int64},
	{Name: "violations", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// WriteArrowIPC writes the constraint and trace tables as Arrow IPC
// stream files, suitable for zero-copy hand-off to BI tooling. Paths
// name the two output files.
func WriteArrowIPC(d *model.Dashboard, constraintPath, tracePath string) error {
	if err := writeConstraintTable(d.Constraints, constraintPath); err != nil {
		return err
	}
	return writeTraceTable(d.Traces, tracePath)
}

func writeConstraintTable(constraints []model.DashboardConstraint, path string) error {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, constraintSchema)
	defer builder.Release()

	for _, c := range constraints {
		builder.Field(0).(*array.StringBuilder).Append(c.ID)
		builder.Field(1).(*array.StringBuilder).Append(c.Type)
		builder.Field(2).(*array.Int64Builder).Append(c.Statistics.Activations)
		builder.Field(3).(*array.Int64Builder).Append(c.Statistics.Fulfillments)
		builder.Field(4).(*array.Int64Builder).Append(c.Statistics.Violations)
		builder.Field(5).(*array.Int64Builder).Append(c.Statistics.VacuousFulfillments)
		builder.Field(6).(*array.Int64Builder).Append(c.Statistics.VacuousViolations)
		builder.Field(7).(*array.Float64Builder).Append(c.ViolationRate)
		builder.Field(8).(*array.StringBuilder).Append(string(c.Severity))
	}

	return writeRecord(builder, constraintSchema, path)
}

func writeTraceTable(traces []model.DashboardTrace, path string) error {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, traceSchema)
	defer builder.Release()

	for _, t := range traces {
		builder.Field(0).(*array.StringBuilder).Append(t.CaseID)
		builder.Field(1).(*array.Float64Builder).Append(t.Fitness)
		builder.Field(2).(*array.Int64Builder).Append(t.Insertions)
		builder.Field(3).(*array.Int64Builder).Append(t.Deletions)
		builder.Field(4).(*array.Int64Builder).Append(t.Activations)
		builder.Field(5).(*array.Int64Builder).Append(t.Fulfillments)
		builder.Field(6).(*array.Int64Builder).Append(t.Violations)
	}

	return writeRecord(builder, traceSchema, path)
}

// writeRecord finalizes the builder into one record batch and writes it
// as a single-batch IPC stream.
func writeRecord(builder *array.RecordBuilder, schema *arrow.Schema, path string) error {
	record := builder.NewRecord()
	defer record.Release()

	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeExportFailed, "creating arrow output").
			WithContext("path", path)
	}

	writer := ipc.NewWriter(out, ipc.WithSchema(schema))
	if err := writer.Write(record); err != nil {
		writer.Close()
		out.Close()
		return errors.Wrap(err, errors.CodeExportFailed, "writing arrow batch")
	}
	if err := writer.Close(); err != nil {
		out.Close()
		return errors.Wrap(err, errors.CodeExportFailed, "closing arrow writer")
	}
	return out.Close()
}
