package declare

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/declarelens/declarelens/internal/model"
	"github.com/declarelens/declarelens/pkg/parser"
)

// Model lines look like "Template Name[Activity1, Activity2]", optionally
// followed by |-separated metadata segments that are not parsed here.
var modelLinePattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 _-]*?)\s*\[([^\]]*)\]`)

// ParseLine parses one non-empty, non-comment model line into a
// constraint. The second return is false when the line must be skipped;
// the reason is recorded on diags.
func ParseLine(line string, lineNum int, file string, diags *parser.Diagnostics) (model.DeclareConstraint, bool) {
	// Only the first |-separated segment carries the constraint.
	if idx := strings.Index(line, "|"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	m := modelLinePattern.FindStringSubmatch(line)
	if m == nil {
		diags.Skip(file, lineNum, "not a constraint line")
		return model.DeclareConstraint{}, false
	}

	tmpl, ok := Lookup(m[1])
	if !ok {
		diags.Skipf(file, lineNum, "unknown template %q", strings.TrimSpace(m[1]))
		return model.DeclareConstraint{}, false
	}

	activities := SplitActivities(m[2])
	if len(activities) == 0 {
		diags.Skip(file, lineNum, "empty activity list")
		return model.DeclareConstraint{}, false
	}

	return model.DeclareConstraint{
		ID:          CanonicalID(tmpl.Name, activities),
		Type:        tmpl.Name,
		Activities:  activities,
		Description: tmpl.Describe(nil),
		HelpText:    tmpl.HelpText(activities),
	}, true
}

// ParseModel reads a whole model file: one constraint per line, blank
// lines and //- or #-prefixed comment lines ignored, malformed lines
// skipped with a diagnostic.
func ParseModel(r io.Reader, file string, diags *parser.Diagnostics) ([]model.DeclareConstraint, error) {
	var constraints []model.DeclareConstraint

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		if c, ok := ParseLine(line, lineNum, file, diags); ok {
			constraints = append(constraints, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return constraints, nil
}
