package parser

import "fmt"

// Diagnostic records one skipped row or line with its location and the
// reason it was rejected. Malformed rows never abort a run; they are
// collected here so callers (and tests) can inspect parse quality.
type Diagnostic struct {
	File   string
	Line   int
	Reason string
}

// String renders the diagnostic in file:line form.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Reason)
}

// Diagnostics accumulates skipped-row diagnostics across input files.
// The zero value is ready to use. Not safe for concurrent use; each
// concurrently parsed file gets its own collector and the engine merges
// them after the load barrier.
type Diagnostics struct {
	entries []Diagnostic
}

// Skip records a skipped row.
func (d *Diagnostics) Skip(file string, line int, reason string) {
	d.entries = append(d.entries, Diagnostic{File: file, Line: line, Reason: reason})
}

// Skipf records a skipped row with a formatted reason.
func (d *Diagnostics) Skipf(file string, line int, format string, args ...interface{}) {
	d.Skip(file, line, fmt.Sprintf(format, args...))
}

// Count returns the number of recorded diagnostics.
func (d *Diagnostics) Count() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// CountFor returns the number of diagnostics recorded for one file.
func (d *Diagnostics) CountFor(file string) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, e := range d.entries {
		if e.File == file {
			n++
		}
	}
	return n
}

// Entries returns a copy of the recorded diagnostics.
func (d *Diagnostics) Entries() []Diagnostic {
	if d == nil {
		return nil
	}
	out := make([]Diagnostic, len(d.entries))
	copy(out, d.entries)
	return out
}

// Merge appends another collector's entries.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.entries = append(d.entries, other.entries...)
}
