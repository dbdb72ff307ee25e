package analysis

import "github.com/declarelens/declarelens/internal/model"

// BuildCoViolationMatrix derives the symmetric co-violation matrix for a
// fixed, ordered constraint list. Cell (i,j) counts traces in which
// constraints i and j were both violated; the diagonal (i,i) is the
// total violating-trace count of constraint i.
func BuildCoViolationMatrix(constraintIDs []string, violatedSets []map[string]bool) model.CoViolationMatrix {
	n := len(constraintIDs)
	matrix := model.CoViolationMatrix{
		ConstraintIDs: constraintIDs,
		Counts:        make([][]int64, n),
	}
	for i := range matrix.Counts {
		matrix.Counts[i] = make([]int64, n)
	}

	index := make(map[string]int, n)
	for i, id := range constraintIDs {
		index[id] = i
	}

	for _, violated := range violatedSets {
		// Collect this trace's violated indices, then bump every
		// unordered pair (self-pairs included) symmetrically.
		var indices []int
		for id := range violated {
			if i, ok := index[id]; ok {
				indices = append(indices, i)
			}
		}
		for x := 0; x < len(indices); x++ {
			for y := x; y < len(indices); y++ {
				i, j := indices[x], indices[y]
				matrix.Counts[i][j]++
				if i != j {
					matrix.Counts[j][i]++
				}
			}
		}
	}

	return matrix
}
