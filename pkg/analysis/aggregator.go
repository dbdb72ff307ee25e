// Package analysis merges constraint templates, replay statistics, and
// event logs into the dashboard structures: enriched constraints and
// traces, overview KPIs, tag groups, and the co-violation matrix.
package analysis

import (
	"sort"

	"github.com/declarelens/declarelens/internal/model"
	"github.com/declarelens/declarelens/pkg/align"
	"github.com/declarelens/declarelens/pkg/declare"
	"github.com/declarelens/declarelens/pkg/parser"
)

// Input is one run's worth of parsed artifacts. Only Constraints is
// required; everything else degrades to an empty collection.
type Input struct {
	Constraints []model.DeclareConstraint
	Stats       []model.ConstraintStatistics // overview CSV, ids in CSV form
	Details     []parser.DetailRow           // detail CSV, ids in CSV form
	Replay      []model.TraceStatistics
	Log         *model.EventLog
	AlignedLog  *model.EventLog
	Tags        map[string]model.ConstraintTag // keyed by canonical id
}

// Result is the aggregation output, later combined with the flow graph
// into the full dashboard bundle.
type Result struct {
	Constraints []model.DashboardConstraint
	Traces      []model.DashboardTrace
	Overview    model.DashboardOverview
	Groups      []model.ConstraintGroup
	CoViolation model.CoViolationMatrix
}

// Aggregate performs the central merge. Diagnostics for unmatched
// identifiers and alignment inconsistencies are recorded on diags.
func Aggregate(in Input, diags *parser.Diagnostics) Result {
	known := make(map[string]bool, len(in.Constraints))
	for _, c := range in.Constraints {
		known[c.ID] = true
	}

	// Reconcile CSV identifiers to canonical form up front. Rows whose
	// ids do not resolve to a model constraint are dropped with a
	// diagnostic; they cannot be attributed.
	details := reconcileDetails(in.Details, known, diags)
	overview := reconcileStats(in.Stats, known, diags)

	// Per-constraint tallies recomputed from the detail map: the source
	// of truth, because it is internally consistent with the per-trace
	// breakdown. The overview CSV only fills in constraints the detail
	// file never mentions.
	detailTallies := tallyByConstraint(details)

	constraints := buildConstraints(in, detailTallies, overview)
	traces := buildTraces(in, details, diags)

	violatedSets := make([]map[string]bool, len(traces))
	for i := range traces {
		set := make(map[string]bool, len(traces[i].ViolatedConstraints))
		for _, id := range traces[i].ViolatedConstraints {
			set[id] = true
		}
		violatedSets[i] = set
	}

	return Result{
		Constraints: constraints,
		Traces:      traces,
		Overview:    buildOverview(constraints, traces, in.Log, violatedSets),
		Groups:      buildGroups(constraints),
		CoViolation: BuildCoViolationMatrix(constraintIDs(in.Constraints), violatedSets),
	}
}

func constraintIDs(constraints []model.DeclareConstraint) []string {
	ids := make([]string, len(constraints))
	for i, c := range constraints {
		ids[i] = c.ID
	}
	return ids
}

func reconcileDetails(rows []parser.DetailRow, known map[string]bool, diags *parser.Diagnostics) []parser.DetailRow {
	out := make([]parser.DetailRow, 0, len(rows))
	for _, row := range rows {
		id, ok := declare.FromStatsID(row.ConstraintID)
		if !ok || !known[id] {
			diags.Skipf("analysis", 0, "detail row references unknown constraint %q", row.ConstraintID)
			continue
		}
		row.ConstraintID = id
		out = append(out, row)
	}
	return out
}

func reconcileStats(stats []model.ConstraintStatistics, known map[string]bool, diags *parser.Diagnostics) map[string]model.ConstraintStatistics {
	out := make(map[string]model.ConstraintStatistics, len(stats))
	for _, s := range stats {
		id, ok := declare.FromStatsID(s.ConstraintID)
		if !ok || !known[id] {
			diags.Skipf("analysis", 0, "statistics row references unknown constraint %q", s.ConstraintID)
			continue
		}
		s.ConstraintID = id
		out[id] = s
	}
	return out
}

// tallyByConstraint recomputes constraint counters from detail rows.
func tallyByConstraint(details []parser.DetailRow) map[string]model.ConstraintStatistics {
	tallies := make(map[string]model.ConstraintStatistics)
	for _, row := range details {
		t := tallies[row.ConstraintID]
		t.ConstraintID = row.ConstraintID
		t.Activations++
		switch row.Result {
		case model.ResultFulfillment:
			t.Fulfillments++
		case model.ResultViolation:
			t.Violations++
		case model.ResultVacuousFulfillment:
			t.VacuousFulfillments++
		case model.ResultVacuousViolation:
			t.VacuousViolations++
		}
		tallies[row.ConstraintID] = t
	}
	return tallies
}

func buildConstraints(in Input, detailTallies, overview map[string]model.ConstraintStatistics) []model.DashboardConstraint {
	out := make([]model.DashboardConstraint, 0, len(in.Constraints))
	for _, c := range in.Constraints {
		stats, fromDetail := detailTallies[c.ID]
		if !fromDetail {
			stats = overview[c.ID]
			stats.ConstraintID = c.ID
		}

		dc := model.DashboardConstraint{
			DeclareConstraint: c,
			Statistics:        stats,
			ViolationRate:     stats.ViolationRate(),
			Severity:          stats.Severity(),
		}
		if window, ok := declare.TimeWindow(c.ID); ok {
			dc.IsTimeConstraint = true
			dc.TimeWindow = window
		}
		if tag, ok := in.Tags[c.ID]; ok {
			dc.Tagged = true
			dc.Tag = tag
		}
		out = append(out, dc)
	}
	return out
}

// buildTraces folds detail rows, replay statistics, and both event logs
// into per-trace records. Trace order: replay CSV order first, then
// detail-only cases, then log-only cases.
func buildTraces(in Input, details []parser.DetailRow, diags *parser.Diagnostics) []model.DashboardTrace {
	replayByCase := make(map[string]model.TraceStatistics, len(in.Replay))
	var order []string
	seen := make(map[string]bool)

	push := func(caseID string) {
		if caseID != "" && !seen[caseID] {
			seen[caseID] = true
			order = append(order, caseID)
		}
	}

	for _, r := range in.Replay {
		replayByCase[r.CaseID] = r
		push(r.CaseID)
	}
	for _, row := range details {
		push(row.CaseID)
	}
	if in.Log != nil {
		for _, c := range in.Log.Cases {
			push(c.CaseID)
		}
	}

	detailsByCase := make(map[string][]parser.DetailRow)
	for _, row := range details {
		detailsByCase[row.CaseID] = append(detailsByCase[row.CaseID], row)
	}

	traces := make([]model.DashboardTrace, 0, len(order))
	for _, caseID := range order {
		trace := model.DashboardTrace{
			TraceStatistics: model.TraceStatistics{CaseID: caseID},
		}
		if replay, ok := replayByCase[caseID]; ok {
			trace.TraceStatistics = replay
		}

		trace.Details = foldDetails(detailsByCase[caseID])
		for _, d := range trace.Details {
			trace.Activations += d.Activations
			trace.Fulfillments += d.Fulfillments
			trace.Violations += d.Violations
			if d.Violations > 0 {
				trace.ViolatedConstraints = append(trace.ViolatedConstraints, d.ConstraintID)
			}
			if d.Fulfillments > 0 {
				trace.FulfilledConstraints = append(trace.FulfilledConstraints, d.ConstraintID)
			}
		}

		attachEvents(&trace, in.Log, in.AlignedLog, diags)
		traces = append(traces, trace)
	}
	return traces
}

// foldDetails groups a trace's detail rows per constraint, preserving
// first-seen constraint order.
func foldDetails(rows []parser.DetailRow) []model.TraceConstraintDetail {
	var out []model.TraceConstraintDetail
	index := make(map[string]int)

	for _, row := range rows {
		i, ok := index[row.ConstraintID]
		if !ok {
			i = len(out)
			index[row.ConstraintID] = i
			out = append(out, model.TraceConstraintDetail{ConstraintID: row.ConstraintID})
		}
		d := &out[i]
		d.Results = append(d.Results, row.Result)
		d.Activations++
		switch row.Result {
		case model.ResultFulfillment:
			d.Fulfillments++
		case model.ResultViolation:
			d.Violations++
		case model.ResultVacuousFulfillment:
			d.VacuousFulfillments++
		case model.ResultVacuousViolation:
			d.VacuousViolations++
		}
	}
	return out
}

// attachEvents sorts and attaches the raw events and computes the
// aligned step list for a trace present in both logs. The recomputed
// insertion/deletion counts are checked against the stored replay
// values; a mismatch is recorded, not fatal.
func attachEvents(trace *model.DashboardTrace, log, alignedLog *model.EventLog, diags *parser.Diagnostics) {
	var raw, aligned *model.ProcessCase
	if log != nil {
		raw = log.Case(trace.CaseID)
	}
	if alignedLog != nil {
		aligned = alignedLog.Case(trace.CaseID)
	}

	if raw != nil {
		raw.SortEvents()
		trace.Events = raw.Events
	}
	if raw == nil || aligned == nil {
		return
	}
	aligned.SortEvents()

	result := align.Sequences(raw.ActivitySequence(), aligned.ActivitySequence())
	trace.AlignedEvents = align.Zip(result, raw.Events, aligned.Events)

	if _, ins, del := align.Counts(trace.AlignedEvents); ins != trace.Insertions || del != trace.Deletions {
		diags.Skipf("analysis", 0,
			"trace %s: alignment counts (ins=%d del=%d) disagree with replay (ins=%d del=%d)",
			trace.CaseID, ins, del, trace.Insertions, trace.Deletions)
	}
}

func buildOverview(constraints []model.DashboardConstraint, traces []model.DashboardTrace, log *model.EventLog, violatedSets []map[string]bool) model.DashboardOverview {
	o := model.DashboardOverview{
		TotalConstraints: int64(len(constraints)),
		TotalTraces:      int64(len(traces)),
	}

	if len(traces) > 0 {
		var fitnessSum float64
		var conforming int64
		for i, t := range traces {
			fitnessSum += t.Fitness
			if len(violatedSets[i]) == 0 {
				conforming++
			}
		}
		o.OverallFitness = fitnessSum / float64(len(traces))
		o.OverallConformance = float64(conforming) / float64(len(traces))
	}

	o.OverallCompliance = tagDimensionScore(constraints, traces, violatedSets, func(t model.ConstraintTag) bool { return t.Compliance })
	o.OverallQuality = tagDimensionScore(constraints, traces, violatedSets, func(t model.ConstraintTag) bool { return t.Quality })
	o.OverallEfficiency = tagDimensionScore(constraints, traces, violatedSets, func(t model.ConstraintTag) bool { return t.Efficiency })

	// Tag priority drives these counts, not statistical severity.
	for _, c := range constraints {
		if !c.Tagged || c.Statistics.Violations == 0 {
			continue
		}
		switch c.Tag.Priority {
		case model.SeverityCritical:
			o.CriticalViolations++
		case model.SeverityHigh:
			o.HighPriorityViolations++
		}
	}

	if log != nil {
		variants := make(map[string]bool)
		for i := range log.Cases {
			variants[log.Cases[i].Variant()] = true
		}
		o.TotalVariants = int64(len(variants))
	}

	return o
}

// tagDimensionScore returns the fraction of traces that violate none of
// the constraints tagged with the given dimension.
func tagDimensionScore(constraints []model.DashboardConstraint, traces []model.DashboardTrace, violatedSets []map[string]bool, tagged func(model.ConstraintTag) bool) float64 {
	if len(traces) == 0 {
		return 0
	}

	dimension := make(map[string]bool)
	for _, c := range constraints {
		if c.Tagged && tagged(c.Tag) {
			dimension[c.ID] = true
		}
	}

	var clean int64
	for i := range traces {
		violates := false
		for id := range violatedSets[i] {
			if dimension[id] {
				violates = true
				break
			}
		}
		if !violates {
			clean++
		}
	}
	return float64(clean) / float64(len(traces))
}

// buildGroups rolls tagged constraints up by tag group, with the same
// severity bucketing applied to the group's weighted violation rate.
func buildGroups(constraints []model.DashboardConstraint) []model.ConstraintGroup {
	byName := make(map[string]*model.ConstraintGroup)
	var names []string

	for _, c := range constraints {
		if !c.Tagged || c.Tag.Group == "" {
			continue
		}
		g, ok := byName[c.Tag.Group]
		if !ok {
			g = &model.ConstraintGroup{Name: c.Tag.Group}
			byName[c.Tag.Group] = g
			names = append(names, c.Tag.Group)
		}
		g.ConstraintIDs = append(g.ConstraintIDs, c.ID)
		g.Activations += c.Statistics.Activations
		g.Violations += c.Statistics.Violations
	}

	sort.Strings(names)
	groups := make([]model.ConstraintGroup, 0, len(names))
	for _, name := range names {
		g := byName[name]
		if g.Activations > 0 {
			g.ViolationRate = float64(g.Violations) / float64(g.Activations)
		}
		g.Severity = model.SeverityForRate(g.ViolationRate)
		groups = append(groups, *g)
	}
	return groups
}
