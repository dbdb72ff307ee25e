package model

import (
	"sort"
	"strings"
	"time"
)

// ProcessEvent is a single event of a trace in the raw event log.
type ProcessEvent struct {
	ID        string
	Activity  string
	Timestamp time.Time
	Resource  string
}

// ProcessCase is one trace: a case identifier and its events.
// Source files do not guarantee event order; call SortEvents before any
// time-based computation.
type ProcessCase struct {
	CaseID string
	Events []ProcessEvent
}

// SortEvents orders the case's events by timestamp (stable, so events
// with identical timestamps keep their file order).
func (c *ProcessCase) SortEvents() {
	sort.SliceStable(c.Events, func(i, j int) bool {
		return c.Events[i].Timestamp.Before(c.Events[j].Timestamp)
	})
}

// ActivitySequence returns the ordered activity names of the case.
func (c *ProcessCase) ActivitySequence() []string {
	seq := make([]string, len(c.Events))
	for i, e := range c.Events {
		seq[i] = e.Activity
	}
	return seq
}

// Variant returns the case's activity sequence as a single string.
// Traces sharing a variant are behaviorally identical at the
// activity-name level.
func (c *ProcessCase) Variant() string {
	return strings.Join(c.ActivitySequence(), "\x1f")
}

// EventLog is a parsed event log keyed by case id, preserving file order.
type EventLog struct {
	Cases []ProcessCase
}

// Case returns the case with the given id, or nil.
func (l *EventLog) Case(caseID string) *ProcessCase {
	if l == nil {
		return nil
	}
	for i := range l.Cases {
		if l.Cases[i].CaseID == caseID {
			return &l.Cases[i]
		}
	}
	return nil
}

// AlignmentStepType classifies one step of a log/model alignment.
type AlignmentStepType string

const (
	StepSynchronous AlignmentStepType = "synchronous"
	StepInsertion   AlignmentStepType = "insertion"
	StepDeletion    AlignmentStepType = "deletion"
)

// AlignedEvent is one step of a model-aligned replay. OriginalActivity is
// empty for insertion steps, AlignedActivity for deletion steps.
type AlignedEvent struct {
	OriginalActivity string
	AlignedActivity  string
	Type             AlignmentStepType
	Timestamp        time.Time
}

// TraceStatistics holds replay output for one trace.
type TraceStatistics struct {
	CaseID     string
	Fitness    float64 // in [0,1]
	Insertions int64
	Deletions  int64
}
