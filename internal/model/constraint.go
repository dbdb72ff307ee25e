// Package model defines core data structures for DeclareLens.
package model

// Severity buckets a constraint's violation rate for dashboard display.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// SeverityForRate maps a violation rate to its severity bucket.
// The same thresholds apply at constraint and group level.
func SeverityForRate(rate float64) Severity {
	switch {
	case rate >= 0.8:
		return SeverityCritical
	case rate >= 0.6:
		return SeverityHigh
	case rate >= 0.3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DeclareConstraint is one parsed line of a Declare model.
// Activities are ordered: element 0 is the source, element 1 the target
// for binary templates. Immutable after parsing.
type DeclareConstraint struct {
	// ID is the canonical form "Template[Activity1, Activity2]".
	ID string

	// Type is the normalized template key, e.g. "AlternateSuccession".
	Type string

	// Activities is the ordered, non-empty activity list.
	Activities []string

	// Description is the template description with placeholders resolved.
	Description string

	// HelpText is the activity-specific explanation for end users.
	HelpText string
}

// ConstraintStatistics holds per-constraint replay counters.
//
// Vacuous counts are kept separate from the main counters throughout:
// Activations == Fulfillments + Violations + VacuousFulfillments +
// VacuousViolations.
type ConstraintStatistics struct {
	ConstraintID string

	Activations         int64
	Fulfillments        int64
	Violations          int64
	VacuousFulfillments int64
	VacuousViolations   int64
}

// ViolationRate returns non-vacuous violations over all activations,
// defined as 0 when there are no activations.
func (s ConstraintStatistics) ViolationRate() float64 {
	if s.Activations == 0 {
		return 0
	}
	return float64(s.Violations) / float64(s.Activations)
}

// Severity buckets the violation rate.
func (s ConstraintStatistics) Severity() Severity {
	return SeverityForRate(s.ViolationRate())
}

// ResultType is the outcome of evaluating a constraint at one activation.
type ResultType string

const (
	ResultFulfillment        ResultType = "fulfillment"
	ResultViolation          ResultType = "violation"
	ResultVacuousFulfillment ResultType = "vac. fulfillment"
	ResultVacuousViolation   ResultType = "vac. violation"
)

// ParseResultType maps a detail-CSV result string to its ResultType.
func ParseResultType(s string) (ResultType, bool) {
	switch ResultType(s) {
	case ResultFulfillment, ResultViolation, ResultVacuousFulfillment, ResultVacuousViolation:
		return ResultType(s), true
	}
	return "", false
}

// TraceConstraintDetail is the per-(trace, constraint) roll-up of result
// types observed during replay.
type TraceConstraintDetail struct {
	ConstraintID string
	Results      []ResultType

	Activations         int64
	Fulfillments        int64
	Violations          int64
	VacuousFulfillments int64
	VacuousViolations   int64
}

// ConstraintTag is a user-assigned classification merged into a
// DashboardConstraint by identifier match.
type ConstraintTag struct {
	Priority   Severity `yaml:"priority"`
	Quality    bool     `yaml:"quality"`
	Efficiency bool     `yaml:"efficiency"`
	Compliance bool     `yaml:"compliance"`
	Group      string   `yaml:"group,omitempty"`
}
