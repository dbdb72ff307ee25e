// Package tags loads user-assigned constraint classifications from a
// YAML file and reconciles their identifiers to canonical form.
package tags

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/declarelens/declarelens/internal/model"
	"github.com/declarelens/declarelens/pkg/declare"
	"github.com/declarelens/declarelens/pkg/errors"
	"github.com/declarelens/declarelens/pkg/parser"
)

// File is the on-disk shape of a tag file.
//
//	constraints:
//	  "Response[Register, Approve]":
//	    priority: HIGH
//	    compliance: true
//	    group: approvals
type File struct {
	Constraints map[string]Entry `yaml:"constraints"`
}

// Entry is one tag assignment as written in the file.
type Entry struct {
	Priority   string `yaml:"priority"`
	Quality    bool   `yaml:"quality"`
	Efficiency bool   `yaml:"efficiency"`
	Compliance bool   `yaml:"compliance"`
	Group      string `yaml:"group"`
}

// Read parses a tag file and returns tags keyed by canonical constraint
// id. Both the canonical ("Response[A, B]") and the statistics-CSV
// ("Response:[A, B]") identifier forms are accepted as keys. Entries
// with an unknown priority are kept with SeverityLow and recorded as a
// diagnostic.
func Read(r io.Reader, file string, diags *parser.Diagnostics) (map[string]model.ConstraintTag, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFilePermission, "reading tag file")
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, errors.CodeRowSkipped, "parsing tag file").
			WithContext("file", file)
	}

	tags := make(map[string]model.ConstraintTag, len(f.Constraints))
	for id, entry := range f.Constraints {
		canonical := canonicalize(id)
		if canonical == "" {
			diags.Skipf(file, 0, "tag id %q has no recognizable constraint form", id)
			continue
		}

		priority, ok := parsePriority(entry.Priority)
		if !ok {
			diags.Skipf(file, 0, "tag %q has unknown priority %q, using LOW", id, entry.Priority)
		}

		tags[canonical] = model.ConstraintTag{
			Priority:   priority,
			Quality:    entry.Quality,
			Efficiency: entry.Efficiency,
			Compliance: entry.Compliance,
			Group:      strings.TrimSpace(entry.Group),
		}
	}
	return tags, nil
}

// canonicalize maps a tag-file key to the canonical constraint id.
func canonicalize(id string) string {
	if canonical, ok := declare.FromStatsID(id); ok {
		return canonical
	}
	return strings.TrimSpace(id)
}

// parsePriority maps a priority string to a Severity, case-insensitively.
// Unknown or empty values yield SeverityLow; ok is false for unknown
// non-empty values.
func parsePriority(s string) (model.Severity, bool) {
	switch model.Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case model.SeverityCritical:
		return model.SeverityCritical, true
	case model.SeverityHigh:
		return model.SeverityHigh, true
	case model.SeverityMedium:
		return model.SeverityMedium, true
	case model.SeverityLow, "":
		return model.SeverityLow, true
	}
	return model.SeverityLow, false
}
