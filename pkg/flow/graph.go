// Package flow builds the variant-coverage-filtered directly-follows
// process graph and its transition-frequency matrices.
package flow

import (
	"sort"

	"github.com/declarelens/declarelens/internal/model"
)

type transition struct {
	from, to string
}

// Build constructs the flow visualization from the raw and aligned event
// logs, filtered to the smallest set of most-frequent variants covering
// at least coveragePercent of all traces (0-100). Either log may be nil.
func Build(log, alignedLog *model.EventLog, coveragePercent float64) model.FlowVisualization {
	viz := model.FlowVisualization{CoveragePercent: coveragePercent}

	base := log
	if base == nil || len(base.Cases) == 0 {
		base = alignedLog
	}
	if base == nil || len(base.Cases) == 0 {
		return viz
	}

	included := filterByVariantCoverage(base, coveragePercent)
	viz.IncludedTraces = int64(len(included))

	rawTally := tallyTransitions(log, included)
	alignedTally := tallyTransitions(alignedLog, included)

	viz.LogMatrix = buildMatrix(rawTally)
	viz.AlignedMatrix = buildMatrix(alignedTally)
	viz.Graph = buildGraph(rawTally, alignedTally)
	return viz
}

// filterByVariantCoverage groups traces by exact activity sequence,
// sorts the variant groups by trace count descending, and greedily
// includes groups until cumulative coverage reaches the threshold. The
// stopping check runs after inclusion, so even a 0% threshold keeps the
// most frequent variant group.
func filterByVariantCoverage(log *model.EventLog, coveragePercent float64) map[string]bool {
	type group struct {
		variant string
		caseIDs []string
	}

	byVariant := make(map[string]*group)
	var groups []*group
	for i := range log.Cases {
		c := &log.Cases[i]
		c.SortEvents()
		v := c.Variant()
		g, ok := byVariant[v]
		if !ok {
			g = &group{variant: v}
			byVariant[v] = g
			groups = append(groups, g)
		}
		g.caseIDs = append(g.caseIDs, c.CaseID)
	}

	// Stable sort keeps first-seen order among equally frequent variants.
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].caseIDs) > len(groups[j].caseIDs)
	})

	total := len(log.Cases)
	included := make(map[string]bool)
	covered := 0
	for _, g := range groups {
		for _, id := range g.caseIDs {
			included[id] = true
		}
		covered += len(g.caseIDs)
		if float64(covered)/float64(total)*100 >= coveragePercent {
			break
		}
	}
	return included
}

// tallyTransitions counts every directly-follows pair within the
// included traces, including synthetic START/END boundary transitions.
// A single-event trace contributes the two boundary edges.
func tallyTransitions(log *model.EventLog, included map[string]bool) map[transition]int64 {
	tally := make(map[transition]int64)
	if log == nil {
		return tally
	}

	for i := range log.Cases {
		c := &log.Cases[i]
		if !included[c.CaseID] || len(c.Events) == 0 {
			continue
		}
		c.SortEvents()
		seq := c.ActivitySequence()

		tally[transition{model.FlowStart, seq[0]}]++
		for j := 1; j < len(seq); j++ {
			tally[transition{seq[j-1], seq[j]}]++
		}
		tally[transition{seq[len(seq)-1], model.FlowEnd}]++
	}
	return tally
}

// buildMatrix renders a tally as a transition-frequency matrix.
// Self-loops stay in the matrix even though the graph omits them.
func buildMatrix(tally map[transition]int64) model.TransitionMatrix {
	names := make(map[string]bool)
	for t := range tally {
		names[t.from] = true
		names[t.to] = true
	}

	activities := orderedActivities(names)
	index := make(map[string]int, len(activities))
	for i, a := range activities {
		index[a] = i
	}

	counts := make([][]int64, len(activities))
	for i := range counts {
		counts[i] = make([]int64, len(activities))
	}
	for t, n := range tally {
		counts[index[t.from]][index[t.to]] = n
	}

	return model.TransitionMatrix{Activities: activities, Counts: counts}
}

// buildGraph merges both tallies into one edge set, classifying each
// transition by which log(s) it was observed in. Self-loops become node
// annotations; nodes without incident edges are dropped.
func buildGraph(rawTally, alignedTally map[transition]int64) model.ProcessFlowGraph {
	all := make(map[transition]bool)
	for t := range rawTally {
		all[t] = true
	}
	for t := range alignedTally {
		all[t] = true
	}

	selfLoops := make(map[string]int64)
	var edges []model.FlowEdge
	nodesWithEdges := make(map[string]bool)

	for t := range all {
		rawCount, inRaw := rawTally[t]
		alignedCount, inAligned := alignedTally[t]

		if t.from == t.to {
			selfLoops[t.from] += rawCount + alignedCount
			continue
		}

		edge := model.FlowEdge{From: t.from, To: t.to}
		switch {
		case inRaw && inAligned:
			edge.Origin = model.TransitionConforming
			edge.Frequency = rawCount
		case inRaw:
			edge.Origin = model.TransitionLogOnly
			edge.Frequency = rawCount
		default:
			edge.Origin = model.TransitionModelOnly
			edge.Frequency = alignedCount
		}
		edges = append(edges, edge)
		nodesWithEdges[t.from] = true
		nodesWithEdges[t.to] = true
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	var nodes []model.FlowNode
	for _, a := range orderedActivities(nodesWithEdges) {
		nodes = append(nodes, model.FlowNode{Activity: a, SelfLoops: selfLoops[a]})
	}

	return model.ProcessFlowGraph{Nodes: nodes, Edges: edges}
}

// orderedActivities sorts activity names with START first and END last.
func orderedActivities(names map[string]bool) []string {
	var activities []string
	for name := range names {
		if name != model.FlowStart && name != model.FlowEnd {
			activities = append(activities, name)
		}
	}
	sort.Strings(activities)

	ordered := make([]string, 0, len(activities)+2)
	if names[model.FlowStart] {
		ordered = append(ordered, model.FlowStart)
	}
	ordered = append(ordered, activities...)
	if names[model.FlowEnd] {
		ordered = append(ordered, model.FlowEnd)
	}
	return ordered
}
