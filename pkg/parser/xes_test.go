package parser

import (
	"strings"
	"testing"
)

const structuredXES = `<?xml version="1.0" encoding="UTF-8"?>
<log xes.version="1.0">
  <trace>
    <string key="concept:name" value="case-1"/>
    <event>
      <string key="concept:name" value="Register"/>
      <date key="time:timestamp" value="2024-03-01T10:00:00.000+01:00"/>
      <string key="org:group" value="Sales"/>
    </event>
    <event>
      <string key="concept:name" value="Approve"/>
      <date key="time:timestamp" value="2024-03-01T09:00:00.000+01:00"/>
      <string key="org:resource" value="Alice"/>
    </event>
  </trace>
  <trace>
    <string key="concept:name" value="case-2"/>
    <event>
      <string key="concept:name" value="Register"/>
      <date key="time:timestamp" value="2024-03-02T08:30:00.000+01:00"/>
    </event>
  </trace>
</log>`

func TestReadEventLogStructured(t *testing.T) {
	diags := &Diagnostics{}
	log, err := ReadEventLog(strings.NewReader(structuredXES), "log.xes", diags)
	if err != nil {
		t.Fatal(err)
	}

	if len(log.Cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(log.Cases))
	}

	c1 := log.Case("case-1")
	if c1 == nil || len(c1.Events) != 2 {
		t.Fatalf("case-1 = %+v", c1)
	}
	if c1.Events[0].Activity != "Register" || c1.Events[0].Resource != "Sales" {
		t.Errorf("event 0 = %+v", c1.Events[0])
	}
	if c1.Events[1].Resource != "Alice" {
		t.Errorf("org:resource fallback not applied: %+v", c1.Events[1])
	}

	// File order is preserved until the caller sorts.
	if c1.Events[0].Activity != "Register" {
		t.Errorf("file order not preserved")
	}
	c1.SortEvents()
	if c1.Events[0].Activity != "Approve" {
		t.Errorf("sort by timestamp failed: %v", c1.ActivitySequence())
	}

	if diags.Count() != 0 {
		t.Errorf("diagnostics = %d, want 0", diags.Count())
	}
}

func TestReadEventLogSkipsBadEvents(t *testing.T) {
	input := `<log>
  <trace>
    <string key="concept:name" value="case-1"/>
    <event>
      <date key="time:timestamp" value="2024-03-01T10:00:00"/>
    </event>
    <event>
      <string key="concept:name" value="Register"/>
      <date key="time:timestamp" value="not-a-date"/>
    </event>
  </trace>
</log>`

	diags := &Diagnostics{}
	log, err := ReadEventLog(strings.NewReader(input), "log.xes", diags)
	if err != nil {
		t.Fatal(err)
	}

	c := log.Case("case-1")
	if c == nil {
		t.Fatal("case-1 missing")
	}
	// The nameless event is dropped; the bad timestamp keeps the event
	// with a zero time.
	if len(c.Events) != 1 || c.Events[0].Activity != "Register" {
		t.Errorf("events = %+v", c.Events)
	}
	if diags.Count() != 2 {
		t.Errorf("diagnostics = %d, want 2", diags.Count())
	}
}

func TestReadEventLogLegacyFallback(t *testing.T) {
	input := `<log>
  <trace id="case-9">
    <event activity="Register" timestamp="2024-03-01T10:00:00" resource="Bob"/>
    <event activity="Approve" timestamp="2024-03-01T11:00:00"/>
  </trace>
</log>`

	diags := &Diagnostics{}
	log, err := ReadEventLog(strings.NewReader(input), "legacy.xes", diags)
	if err != nil {
		t.Fatal(err)
	}

	c := log.Case("case-9")
	if c == nil || len(c.Events) != 2 {
		t.Fatalf("legacy parse failed: %+v", log.Cases)
	}
	if c.Events[0].Resource != "Bob" {
		t.Errorf("event 0 = %+v", c.Events[0])
	}
	if c.Events[0].ID != "case-9#0" || c.Events[1].ID != "case-9#1" {
		t.Errorf("event ids = %q, %q", c.Events[0].ID, c.Events[1].ID)
	}
}

func TestReadEventLogEmptyInput(t *testing.T) {
	diags := &Diagnostics{}
	log, err := ReadEventLog(strings.NewReader(""), "empty.xes", diags)
	if err != nil {
		t.Fatal(err)
	}
	if len(log.Cases) != 0 {
		t.Errorf("got %d cases from empty input", len(log.Cases))
	}
}
