// Package align computes minimum-edit-distance alignments between a
// trace's observed activity sequence and its model-aligned sequence.
package align

import (
	"github.com/declarelens/declarelens/internal/model"
)

// OpType classifies one alignment operation.
type OpType uint8

const (
	// OpMatch consumes one element from both sequences.
	OpMatch OpType = iota
	// OpInsert consumes one element from the aligned (model) sequence.
	OpInsert
	// OpDelete consumes one element from the raw (log) sequence.
	OpDelete
)

// Op is one step of an alignment.
type Op struct {
	Type OpType
}

// Result is a full alignment of a raw sequence (length m) against an
// aligned sequence (length n).
type Result struct {
	Ops []Op

	Matches    int64
	Insertions int64
	Deletions  int64
}

// Sequences computes the optimal alignment between raw and aligned
// activity sequences via classic dynamic-programming edit distance.
// On equal cost the backtrack prefers insertion over deletion, so the
// output is deterministic.
func Sequences(raw, aligned []string) Result {
	m, n := len(raw), len(aligned)

	// (m+1) x (n+1) cost table; table[i][j] is the edit distance between
	// raw[:i] and aligned[:j].
	table := make([][]int, m+1)
	for i := range table {
		table[i] = make([]int, n+1)
		table[i][0] = i
	}
	for j := 0; j <= n; j++ {
		table[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if raw[i-1] == aligned[j-1] {
				table[i][j] = table[i-1][j-1]
				continue
			}
			table[i][j] = 1 + min3(table[i-1][j], table[i][j-1], table[i-1][j-1])
		}
	}

	// Backtrack from (m, n). Matches first; otherwise insertion when its
	// cost does not exceed deletion's.
	var reversed []Op
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && raw[i-1] == aligned[j-1]:
			reversed = append(reversed, Op{Type: OpMatch})
			i--
			j--
		case j > 0 && (i == 0 || table[i][j-1] <= table[i-1][j]):
			reversed = append(reversed, Op{Type: OpInsert})
			j--
		default:
			reversed = append(reversed, Op{Type: OpDelete})
			i--
		}
	}

	result := Result{Ops: make([]Op, len(reversed))}
	for k, op := range reversed {
		result.Ops[len(reversed)-1-k] = op
		switch op.Type {
		case OpMatch:
			result.Matches++
		case OpInsert:
			result.Insertions++
		case OpDelete:
			result.Deletions++
		}
	}
	return result
}

// Zip replays the alignment against the original event arrays, advancing
// a separate cursor per operation type, to produce display-ready steps
// with activity names and timestamps.
func Zip(result Result, raw []model.ProcessEvent, aligned []model.ProcessEvent) []model.AlignedEvent {
	steps := make([]model.AlignedEvent, 0, len(result.Ops))
	ri, ai := 0, 0

	for _, op := range result.Ops {
		switch op.Type {
		case OpMatch:
			step := model.AlignedEvent{Type: model.StepSynchronous}
			if ri < len(raw) {
				step.OriginalActivity = raw[ri].Activity
				step.Timestamp = raw[ri].Timestamp
			}
			if ai < len(aligned) {
				step.AlignedActivity = aligned[ai].Activity
			}
			ri++
			ai++
			steps = append(steps, step)

		case OpInsert:
			step := model.AlignedEvent{Type: model.StepInsertion}
			if ai < len(aligned) {
				step.AlignedActivity = aligned[ai].Activity
				step.Timestamp = aligned[ai].Timestamp
			}
			ai++
			steps = append(steps, step)

		case OpDelete:
			step := model.AlignedEvent{Type: model.StepDeletion}
			if ri < len(raw) {
				step.OriginalActivity = raw[ri].Activity
				step.Timestamp = raw[ri].Timestamp
			}
			ri++
			steps = append(steps, step)
		}
	}
	return steps
}

// Counts recomputes the synchronous/insertion/deletion summary from a
// zipped step list. The result must equal the trace's stored replay
// counters; the aggregator records a diagnostic when it does not.
func Counts(steps []model.AlignedEvent) (sync, insertions, deletions int64) {
	for _, s := range steps {
		switch s.Type {
		case model.StepSynchronous:
			sync++
		case model.StepInsertion:
			insertions++
		case model.StepDeletion:
			deletions++
		}
	}
	return sync, insertions, deletions
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
