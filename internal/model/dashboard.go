package model

// DashboardConstraint is a DeclareConstraint merged with its statistics,
// derived severity, time-window flag, and user-assigned tag.
type DashboardConstraint struct {
	DeclareConstraint

	Statistics    ConstraintStatistics
	ViolationRate float64
	Severity      Severity

	// IsTimeConstraint is true when the id carries a [n, m, unit] window.
	IsTimeConstraint bool
	TimeWindow       string

	// Tagged is true when a user tag was merged in.
	Tagged bool
	Tag    ConstraintTag
}

// DashboardTrace is a TraceStatistics merged with aggregated counts,
// violated/fulfilled constraint ids, the raw and aligned event sequences,
// and the full per-constraint detail.
type DashboardTrace struct {
	TraceStatistics

	Activations  int64
	Fulfillments int64
	Violations   int64

	// ViolatedConstraints lists ids with at least one non-vacuous
	// violation in this trace, deduplicated in first-seen order.
	ViolatedConstraints []string

	// FulfilledConstraints lists ids with at least one non-vacuous
	// fulfillment, deduplicated in first-seen order.
	FulfilledConstraints []string

	Events        []ProcessEvent
	AlignedEvents []AlignedEvent

	Details []TraceConstraintDetail
}

// DashboardOverview holds the derived scalar KPIs for a processing run.
type DashboardOverview struct {
	// OverallFitness is the mean trace fitness.
	OverallFitness float64

	// OverallConformance is the fraction of traces with zero non-vacuous
	// violations.
	OverallConformance float64

	// Tag-driven fractions: traces violating none of the constraints
	// tagged with the respective dimension.
	OverallCompliance float64
	OverallQuality    float64
	OverallEfficiency float64

	// Counts of tagged CRITICAL/HIGH priority constraints with at least
	// one violation. Tag priority drives these, not statistical severity.
	CriticalViolations     int64
	HighPriorityViolations int64

	TotalConstraints int64
	TotalTraces      int64
	TotalVariants    int64
}

// ConstraintGroup is a tag-group roll-up of constraints.
type ConstraintGroup struct {
	Name          string
	ConstraintIDs []string

	Activations   int64
	Violations    int64
	ViolationRate float64
	Severity      Severity
}

// CoViolationMatrix counts traces in which constraint pairs were both
// violated. M[i][j] is symmetric; M[i][i] is the violating-trace count
// of constraint i. Indexing follows ConstraintIDs order.
type CoViolationMatrix struct {
	ConstraintIDs []string
	Counts        [][]int64
}

// At returns the cell for the two constraint ids, or 0 when either id is
// not part of the matrix.
func (m *CoViolationMatrix) At(a, b string) int64 {
	ia, ib := -1, -1
	for i, id := range m.ConstraintIDs {
		if id == a {
			ia = i
		}
		if id == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0
	}
	return m.Counts[ia][ib]
}

// Dashboard is the output bundle of one analysis run, consumed by
// rendering collaborators.
type Dashboard struct {
	RunID string

	Constraints []DashboardConstraint
	Traces      []DashboardTrace
	Overview    DashboardOverview
	Groups      []ConstraintGroup
	CoViolation CoViolationMatrix
	Flow        FlowVisualization
}
