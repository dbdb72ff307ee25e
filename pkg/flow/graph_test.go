package flow

import (
	"fmt"
	"testing"
	"time"

	"github.com/declarelens/declarelens/internal/model"
)

func makeLog(variants map[string][]string, counts map[string]int) *model.EventLog {
	log := &model.EventLog{}
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	for name, seq := range variants {
		for i := 0; i < counts[name]; i++ {
			c := model.ProcessCase{CaseID: fmt.Sprintf("%s-%d", name, i)}
			for j, act := range seq {
				c.Events = append(c.Events, model.ProcessEvent{
					Activity:  act,
					Timestamp: base.Add(time.Duration(n*100+j) * time.Second),
				})
			}
			log.Cases = append(log.Cases, c)
			n++
		}
	}
	return log
}

func edgeFrequency(g model.ProcessFlowGraph, from, to string) int64 {
	for _, e := range g.Edges {
		if e.From == from && e.To == to {
			return e.Frequency
		}
	}
	return 0
}

func TestBuildFullCoverage(t *testing.T) {
	log := makeLog(
		map[string][]string{"main": {"a", "b", "c"}, "alt": {"a", "c"}},
		map[string]int{"main": 3, "alt": 1},
	)

	viz := Build(log, nil, 100)
	if viz.IncludedTraces != 4 {
		t.Fatalf("included = %d, want 4", viz.IncludedTraces)
	}

	g := viz.Graph
	if got := edgeFrequency(g, model.FlowStart, "a"); got != 4 {
		t.Errorf("START->a = %d, want 4", got)
	}
	if got := edgeFrequency(g, "a", "b"); got != 3 {
		t.Errorf("a->b = %d, want 3", got)
	}
	if got := edgeFrequency(g, "a", "c"); got != 1 {
		t.Errorf("a->c = %d, want 1", got)
	}
	if got := edgeFrequency(g, "c", model.FlowEnd); got != 4 {
		t.Errorf("c->END = %d, want 4", got)
	}

	// With only a raw log, every edge is log-only.
	for _, e := range g.Edges {
		if e.Origin != model.TransitionLogOnly {
			t.Errorf("edge %s->%s origin = %q", e.From, e.To, e.Origin)
		}
	}
}

func TestBuildZeroCoverageKeepsTopVariant(t *testing.T) {
	log := makeLog(
		map[string][]string{"main": {"a", "b"}, "alt": {"a", "c"}},
		map[string]int{"main": 5, "alt": 2},
	)

	viz := Build(log, nil, 0)
	if viz.IncludedTraces != 5 {
		t.Fatalf("included = %d, want the 5 traces of the top variant", viz.IncludedTraces)
	}
	if edgeFrequency(viz.Graph, "a", "c") != 0 {
		t.Error("excluded variant leaked into the graph")
	}
}

func TestBuildCoverageMonotonicity(t *testing.T) {
	log := makeLog(
		map[string][]string{"v1": {"a", "b"}, "v2": {"a", "c"}, "v3": {"a", "d"}},
		map[string]int{"v1": 6, "v2": 3, "v3": 1},
	)

	prev := int64(0)
	for _, pct := range []float64{0, 50, 70, 100} {
		viz := Build(log, nil, pct)
		if viz.IncludedTraces < prev {
			t.Errorf("coverage %.0f%%: included %d < previous %d", pct, viz.IncludedTraces, prev)
		}
		prev = viz.IncludedTraces
	}
	if prev != 10 {
		t.Errorf("100%% coverage included %d traces, want 10", prev)
	}
}

func TestBuildSingleEventTrace(t *testing.T) {
	log := makeLog(map[string][]string{"solo": {"a"}}, map[string]int{"solo": 1})

	viz := Build(log, nil, 100)
	g := viz.Graph
	if edgeFrequency(g, model.FlowStart, "a") != 1 || edgeFrequency(g, "a", model.FlowEnd) != 1 {
		t.Errorf("single-event trace edges missing: %+v", g.Edges)
	}
}

func TestBuildSelfLoops(t *testing.T) {
	log := makeLog(map[string][]string{"loop": {"a", "a", "b"}}, map[string]int{"loop": 1})

	viz := Build(log, nil, 100)

	// The self-loop stays in the matrix but never becomes an edge.
	m := viz.LogMatrix
	ai := -1
	for i, act := range m.Activities {
		if act == "a" {
			ai = i
		}
	}
	if ai < 0 || m.Counts[ai][ai] != 1 {
		t.Errorf("self-loop missing from matrix")
	}
	if edgeFrequency(viz.Graph, "a", "a") != 0 {
		t.Error("self-loop rendered as an edge")
	}

	for _, n := range viz.Graph.Nodes {
		if n.Activity == "a" && n.SelfLoops != 1 {
			t.Errorf("node a self-loops = %d, want 1", n.SelfLoops)
		}
	}
}

func TestBuildTransitionOrigins(t *testing.T) {
	raw := makeLog(map[string][]string{"r": {"a", "x", "b"}}, map[string]int{"r": 1})
	aligned := &model.EventLog{Cases: []model.ProcessCase{{
		CaseID: raw.Cases[0].CaseID,
		Events: []model.ProcessEvent{
			{Activity: "a", Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
			{Activity: "b", Timestamp: time.Date(2024, 5, 1, 9, 1, 0, 0, time.UTC)},
		},
	}}}

	viz := Build(raw, aligned, 100)

	origins := make(map[string]model.TransitionOrigin)
	for _, e := range viz.Graph.Edges {
		origins[e.From+">"+e.To] = e.Origin
	}

	if origins["START>a"] != model.TransitionConforming {
		t.Errorf("START->a origin = %q", origins["START>a"])
	}
	if origins["a>x"] != model.TransitionLogOnly || origins["x>b"] != model.TransitionLogOnly {
		t.Errorf("log-only transitions misclassified: %v", origins)
	}
	if origins["a>b"] != model.TransitionModelOnly {
		t.Errorf("a->b origin = %q, want model-only", origins["a>b"])
	}
}

func TestBuildEmptyInputs(t *testing.T) {
	viz := Build(nil, nil, 80)
	if len(viz.Graph.Nodes) != 0 || len(viz.Graph.Edges) != 0 || viz.IncludedTraces != 0 {
		t.Errorf("empty input produced a non-empty graph: %+v", viz)
	}
}
