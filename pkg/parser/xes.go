package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/declarelens/declarelens/internal/model"
)

// XES attribute key constants (as byte slices for cheap comparison)
var (
	xesConceptName = []byte("concept:name")
	xesTimeStamp   = []byte("time:timestamp")
	xesOrgGroup    = []byte("org:group")
	xesOrgResource = []byte("org:resource")
)

// XML element names
var (
	xmlTrace  = []byte("trace")
	xmlEvent  = []byte("event")
	xmlString = []byte("string")
	xmlDate   = []byte("date")
	xmlInt    = []byte("int")
	xmlFloat  = []byte("float")
	xmlBool   = []byte("boolean")
)

// XES parser states
type xesState uint8

const (
	stateInit xesState = iota
	stateTrace
	stateEvent
)

// ReadEventLog parses an XES event log into cases. The structured form
// (trace/event elements with string/date attribute children) is tried
// first; when it yields no events the legacy attribute form
// (<event activity="..." timestamp="..." resource="..."/>) is parsed as
// a fallback. Events keep file order; callers sort by timestamp before
// time-based computation.
func ReadEventLog(r io.Reader, file string, diags *Diagnostics) (*model.EventLog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	log := parseStructuredXES(data, file, diags)
	if countEvents(log) == 0 && len(bytes.TrimSpace(data)) > 0 {
		if legacy := parseLegacyXES(data, file, diags); countEvents(legacy) > 0 {
			log = legacy
		}
	}
	return log, nil
}

func countEvents(log *model.EventLog) int {
	n := 0
	for _, c := range log.Cases {
		n += len(c.Events)
	}
	return n
}

// parseStructuredXES runs a streaming state machine over '>'-delimited
// chunks, mirroring the element nesting of the XES standard.
func parseStructuredXES(data []byte, file string, diags *Diagnostics) *model.EventLog {
	reader := bufio.NewReaderSize(bytes.NewReader(data), 256*1024)

	log := &model.EventLog{}
	state := stateInit
	var current *model.ProcessCase
	var event *model.ProcessEvent
	lineNum := 0

	for {
		line, err := reader.ReadBytes('>')
		if len(line) == 0 && err != nil {
			break
		}
		lineNum++
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if err != nil {
				break
			}
			continue
		}

		switch {
		case isOpenTag(line, xmlTrace):
			state = stateTrace
			log.Cases = append(log.Cases, model.ProcessCase{})
			current = &log.Cases[len(log.Cases)-1]

		case isCloseTag(line, xmlTrace):
			state = stateInit
			current = nil

		case isOpenTag(line, xmlEvent):
			state = stateEvent
			event = &model.ProcessEvent{}

		case isCloseTag(line, xmlEvent):
			if event != nil && current != nil {
				if event.Activity == "" {
					diags.Skip(file, lineNum, "event without concept:name")
				} else {
					event.ID = fmt.Sprintf("%s#%d", current.CaseID, len(current.Events))
					current.Events = append(current.Events, *event)
				}
			}
			event = nil
			state = stateTrace

		case state == stateTrace && isAttributeTag(line):
			key, value := extractAttribute(line)
			if bytes.Equal(key, xesConceptName) && current != nil {
				current.CaseID = string(value)
			}

		case state == stateEvent && isAttributeTag(line):
			if event != nil {
				processEventAttribute(line, event, file, lineNum, diags)
			}
		}

		if err != nil {
			break
		}
	}

	// Drop traces that never got a case id and have no events.
	kept := log.Cases[:0]
	for _, c := range log.Cases {
		if c.CaseID != "" || len(c.Events) > 0 {
			kept = append(kept, c)
		}
	}
	log.Cases = kept
	return log
}

// isOpenTag checks if line is an opening tag for the given element.
func isOpenTag(line, element []byte) bool {
	if len(line) < len(element)+2 || line[0] != '<' {
		return false
	}
	if bytes.HasPrefix(line[1:], element) {
		next := 1 + len(element)
		if next >= len(line) {
			return true
		}
		c := line[next]
		// A self-closing element opens and closes in one tag; treat it
		// as a close so empty traces do not swallow following ones.
		if c == '/' {
			return false
		}
		return c == '>' || c == ' ' || c == '\t'
	}
	return false
}

// isCloseTag checks if line is a closing tag for the given element.
func isCloseTag(line, element []byte) bool {
	if len(line) < len(element)+3 || line[0] != '<' {
		return false
	}
	if line[1] == '/' {
		return bytes.HasPrefix(line[2:], element)
	}
	if bytes.HasPrefix(line[1:], element) {
		return line[len(line)-2] == '/' && line[len(line)-1] == '>'
	}
	return false
}

// isAttributeTag checks if line is an XES attribute element.
func isAttributeTag(line []byte) bool {
	if len(line) < 3 || line[0] != '<' {
		return false
	}
	return bytes.HasPrefix(line[1:], xmlString) ||
		bytes.HasPrefix(line[1:], xmlDate) ||
		bytes.HasPrefix(line[1:], xmlInt) ||
		bytes.HasPrefix(line[1:], xmlFloat) ||
		bytes.HasPrefix(line[1:], xmlBool)
}

// extractAttribute extracts key and value from an XES attribute element.
func extractAttribute(line []byte) (key, value []byte) {
	key = extractAttrValue(line, []byte(`key="`))
	value = extractAttrValue(line, []byte(`value="`))
	return key, value
}

// extractAttrValue extracts an XML attribute value.
func extractAttrValue(line, prefix []byte) []byte {
	idx := bytes.Index(line, prefix)
	if idx < 0 {
		return nil
	}
	start := idx + len(prefix)
	end := bytes.IndexByte(line[start:], '"')
	if end < 0 {
		return nil
	}
	return line[start : start+end]
}

// processEventAttribute folds one attribute element into the event.
func processEventAttribute(line []byte, event *model.ProcessEvent, file string, lineNum int, diags *Diagnostics) {
	key, value := extractAttribute(line)
	if key == nil || value == nil {
		return
	}

	switch {
	case bytes.Equal(key, xesConceptName):
		event.Activity = string(value)

	case bytes.Equal(key, xesTimeStamp):
		ts, err := ParseTimestamp(string(value))
		if err != nil {
			diags.Skipf(file, lineNum, "bad timestamp %q", string(value))
			return
		}
		event.Timestamp = ts

	case bytes.Equal(key, xesOrgGroup), bytes.Equal(key, xesOrgResource):
		event.Resource = string(value)
	}
}

// Legacy form: events carry their fields as XML attributes directly.
var legacyEventPattern = regexp.MustCompile(`<event\s+[^>]*?activity="([^"]*)"[^>]*?/?>`)
var legacyAttrPattern = regexp.MustCompile(`(\w+)="([^"]*)"`)
var legacyTracePattern = regexp.MustCompile(`<trace\s+[^>]*?id="([^"]*)"[^>]*?>`)

// parseLegacyXES parses the attribute-based fallback form.
func parseLegacyXES(data []byte, file string, diags *Diagnostics) *model.EventLog {
	log := &model.EventLog{}
	var current *model.ProcessCase

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if m := legacyTracePattern.FindStringSubmatch(line); m != nil {
			log.Cases = append(log.Cases, model.ProcessCase{CaseID: m[1]})
			current = &log.Cases[len(log.Cases)-1]
			continue
		}
		if current == nil {
			continue
		}

		m := legacyEventPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		event := model.ProcessEvent{}
		for _, attr := range legacyAttrPattern.FindAllStringSubmatch(m[0], -1) {
			switch strings.ToLower(attr[1]) {
			case "activity":
				event.Activity = attr[2]
			case "timestamp":
				ts, err := ParseTimestamp(attr[2])
				if err != nil {
					diags.Skipf(file, lineNum, "bad timestamp %q", attr[2])
					continue
				}
				event.Timestamp = ts
			case "resource":
				event.Resource = attr[2]
			}
		}
		if event.Activity == "" {
			diags.Skip(file, lineNum, "event without activity")
			continue
		}
		event.ID = fmt.Sprintf("%s#%d", current.CaseID, len(current.Events))
		current.Events = append(current.Events, event)
	}

	return log
}
