package declare

import (
	"fmt"
	"regexp"
	"strings"
)

// Constraint identifiers appear in three string forms:
//
//	model/canonical:  Response[Register, Approve]
//	statistics CSV:   Response:[Register, Approve]
//	display:          Alternate Succession[Register, Approve]
//
// The canonical form is the engine-internal key; everything else is
// converted on the way in or out.

var statsIDPattern = regexp.MustCompile(`^\s*([^:\[\]]+?)\s*:?\s*\[([^\]]*)\]`)

// CanonicalID builds the canonical id from a registry key and activities.
func CanonicalID(templateKey string, activities []string) string {
	return fmt.Sprintf("%s[%s]", templateKey, strings.Join(activities, ", "))
}

// FromStatsID converts a statistics-CSV identifier ("Template:[A, B]")
// to canonical form. Activity whitespace is normalized so the result
// matches ids produced by the model parser.
func FromStatsID(id string) (string, bool) {
	m := statsIDPattern.FindStringSubmatch(id)
	if m == nil {
		return "", false
	}
	key := NormalizeName(m[1])
	activities := SplitActivities(m[2])
	if len(activities) == 0 {
		return "", false
	}
	return CanonicalID(key, activities), true
}

// ToStatsID converts a canonical id to the statistics-CSV form.
func ToStatsID(canonical string) string {
	idx := strings.Index(canonical, "[")
	if idx < 0 {
		return canonical
	}
	return canonical[:idx] + ":" + canonical[idx:]
}

// DisplayID converts a canonical id to the display form, restoring the
// template's spaced display name.
func DisplayID(canonical string) string {
	idx := strings.Index(canonical, "[")
	if idx < 0 {
		return canonical
	}
	if t, ok := Lookup(canonical[:idx]); ok {
		return t.Display + canonical[idx:]
	}
	return canonical
}

// SplitActivities splits a comma-separated activity list, trimming each
// entry and dropping empties.
func SplitActivities(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Time-window suffix on a constraint id, e.g. "[0, 30, m]".
var timeWindowPattern = regexp.MustCompile(`\[\s*(\d+)\s*,\s*(\d+)\s*,\s*([A-Za-z]+)\s*\]\s*$`)

// TimeWindow reports whether the id carries a [n, m, unit] time-window
// suffix and returns its human-readable rendering. Only the "m"
// (minutes) unit is interpreted; other units pass through verbatim.
func TimeWindow(id string) (string, bool) {
	m := timeWindowPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return "", false
	}
	unit := m[3]
	if unit == "m" {
		return fmt.Sprintf("%s to %s minutes", m[1], m[2]), true
	}
	return fmt.Sprintf("%s to %s %s", m[1], m[2], unit), true
}

// IsTimeConstraint reports whether the id encodes a time window.
func IsTimeConstraint(id string) bool {
	_, ok := TimeWindow(id)
	return ok
}
