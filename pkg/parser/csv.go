package parser

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/declarelens/declarelens/internal/model"
)

// DetailRow is one record of the trace-constraint detail CSV, kept in
// file order so aggregation is deterministic.
type DetailRow struct {
	CaseID       string
	ConstraintID string
	Result       model.ResultType
}

// scanLines iterates the non-empty data lines of a semicolon CSV,
// skipping the header row, and calls handle with the split fields.
func scanLines(r io.Reader, file string, diags *Diagnostics, minFields int, handle func(fields []string, line int)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNum == 1 || strings.TrimSpace(line) == "" {
			continue // header or blank
		}

		fields := strings.Split(line, statsDelimiter)
		if len(fields) < minFields {
			diags.Skipf(file, lineNum, "expected %d fields, got %d", minFields, len(fields))
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		handle(fields, lineNum)
	}
	return scanner.Err()
}

// ReadConstraintStats parses the per-constraint statistics CSV:
// id; activations; fulfilments; violations; vacuous-fulfilments;
// vacuous-violations. Constraint ids stay in their CSV form; the
// aggregator reconciles them against model ids.
func ReadConstraintStats(r io.Reader, file string, diags *Diagnostics) ([]model.ConstraintStatistics, error) {
	var out []model.ConstraintStatistics

	err := scanLines(r, file, diags, 6, func(fields []string, line int) {
		counters := make([]int64, 5)
		for i := range counters {
			v, err := strconv.ParseInt(fields[i+1], 10, 64)
			if err != nil {
				diags.Skipf(file, line, "invalid count %q", fields[i+1])
				return
			}
			counters[i] = v
		}
		out = append(out, model.ConstraintStatistics{
			ConstraintID:        fields[0],
			Activations:         counters[0],
			Fulfillments:        counters[1],
			Violations:          counters[2],
			VacuousFulfillments: counters[3],
			VacuousViolations:   counters[4],
		})
	})
	return out, err
}

// ReadTraceDetails parses the trace-constraint detail CSV:
// caseId; constraintId; resultType.
func ReadTraceDetails(r io.Reader, file string, diags *Diagnostics) ([]DetailRow, error) {
	var out []DetailRow

	err := scanLines(r, file, diags, 3, func(fields []string, line int) {
		result, ok := model.ParseResultType(fields[2])
		if !ok {
			diags.Skipf(file, line, "unknown result type %q", fields[2])
			return
		}
		if fields[0] == "" || fields[1] == "" {
			diags.Skip(file, line, "empty case or constraint id")
			return
		}
		out = append(out, DetailRow{
			CaseID:       fields[0],
			ConstraintID: fields[1],
			Result:       result,
		})
	})
	return out, err
}

// ReadReplayOverview parses the replay overview CSV:
// caseId; insertions; deletions; fitness.
func ReadReplayOverview(r io.Reader, file string, diags *Diagnostics) ([]model.TraceStatistics, error) {
	var out []model.TraceStatistics

	err := scanLines(r, file, diags, 4, func(fields []string, line int) {
		insertions, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || insertions < 0 {
			diags.Skipf(file, line, "invalid insertions %q", fields[1])
			return
		}
		deletions, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil || deletions < 0 {
			diags.Skipf(file, line, "invalid deletions %q", fields[2])
			return
		}
		fitness, err := strconv.ParseFloat(fields[3], 64)
		if err != nil || fitness < 0 || fitness > 1 {
			diags.Skipf(file, line, "invalid fitness %q", fields[3])
			return
		}
		out = append(out, model.TraceStatistics{
			CaseID:     fields[0],
			Insertions: insertions,
			Deletions:  deletions,
			Fitness:    fitness,
		})
	})
	return out, err
}
