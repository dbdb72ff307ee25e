package analysis

import "testing"

func TestCoViolationMatrix(t *testing.T) {
	ids := []string{"A", "B", "C"}
	violated := []map[string]bool{
		{"A": true, "B": true}, // trace 1
		{"A": true, "B": true}, // trace 2
		{"A": true},            // trace 3
		{},                     // trace 4
	}

	m := BuildCoViolationMatrix(ids, violated)

	// Diagonal is the violating-trace count per constraint.
	if m.At("A", "A") != 3 {
		t.Errorf("A diagonal = %d, want 3", m.At("A", "A"))
	}
	if m.At("B", "B") != 2 {
		t.Errorf("B diagonal = %d, want 2", m.At("B", "B"))
	}
	if m.At("C", "C") != 0 {
		t.Errorf("C diagonal = %d, want 0", m.At("C", "C"))
	}

	// A and B co-violate in two traces, symmetrically.
	if m.At("A", "B") != 2 || m.At("B", "A") != 2 {
		t.Errorf("A/B = %d, B/A = %d, want 2/2", m.At("A", "B"), m.At("B", "A"))
	}
	if m.At("A", "C") != 0 {
		t.Errorf("A/C = %d, want 0", m.At("A", "C"))
	}

	// Unknown constraint ids in violated sets are ignored.
	m2 := BuildCoViolationMatrix(ids, []map[string]bool{{"Z": true, "A": true}})
	if m2.At("A", "A") != 1 {
		t.Errorf("unknown id affected known counts")
	}

	// Full symmetry.
	for i := range m.Counts {
		for j := range m.Counts {
			if m.Counts[i][j] != m.Counts[j][i] {
				t.Fatalf("matrix not symmetric at %d,%d", i, j)
			}
		}
	}
}

func TestCoViolationMatrixEmpty(t *testing.T) {
	m := BuildCoViolationMatrix(nil, nil)
	if len(m.Counts) != 0 {
		t.Errorf("empty input produced counts: %v", m.Counts)
	}
	if m.At("A", "B") != 0 {
		t.Errorf("At on empty matrix != 0")
	}
}
