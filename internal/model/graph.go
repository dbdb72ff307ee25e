package model

// Synthetic node names marking trace boundaries in the flow graph.
const (
	FlowStart = "START"
	FlowEnd   = "END"
)

// TransitionOrigin classifies a directly-follows transition by which
// log(s) it was observed in.
type TransitionOrigin string

const (
	// TransitionConforming appears in both the raw and the aligned log.
	TransitionConforming TransitionOrigin = "conforming"
	// TransitionLogOnly appears only in the raw log.
	TransitionLogOnly TransitionOrigin = "log-only"
	// TransitionModelOnly appears only in the aligned log.
	TransitionModelOnly TransitionOrigin = "model-only"
)

// FlowEdge is one directly-follows transition with its frequency.
type FlowEdge struct {
	From      string
	To        string
	Frequency int64
	Origin    TransitionOrigin
}

// FlowNode is an activity (or synthetic START/END) in the flow graph.
type FlowNode struct {
	Activity string

	// SelfLoops counts a->a transitions; self-loops are kept out of the
	// edge set and surfaced as a node annotation instead.
	SelfLoops int64
}

// ProcessFlowGraph is a frequency-weighted directly-follows graph built
// from a variant-coverage-filtered trace subset.
type ProcessFlowGraph struct {
	Nodes []FlowNode
	Edges []FlowEdge
}

// TransitionMatrix is the equivalent matrix rendering of the graph:
// Counts[i][j] is the frequency of Activities[i] -> Activities[j],
// self-loops included.
type TransitionMatrix struct {
	Activities []string
	Counts     [][]int64
}

// FlowVisualization bundles the merged graph with the per-log matrices.
type FlowVisualization struct {
	Graph ProcessFlowGraph

	LogMatrix     TransitionMatrix
	AlignedMatrix TransitionMatrix

	// CoveragePercent is the variant-coverage threshold applied.
	CoveragePercent float64
	// IncludedTraces is how many traces survived the variant filter.
	IncludedTraces int64
}
