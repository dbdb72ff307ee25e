// Package parser provides readers for the process-mining artifacts
// DeclareLens consumes: semicolon-delimited statistics CSVs and XES
// event logs. Malformed rows are skipped and recorded as diagnostics;
// only whole-file failures surface as errors.
package parser

import (
	"time"

	"github.com/declarelens/declarelens/pkg/errors"
)

// Semicolon-delimited statistics files all share the same conventions:
// one header row (skipped), one record per line.
const statsDelimiter = ";"

// timestampFormats are tried in order when parsing event timestamps.
var timestampFormats = []string{
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05.000000Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseTimestamp parses an ISO-8601 style timestamp in any of the
// accepted formats.
func ParseTimestamp(s string) (time.Time, error) {
	for _, format := range timestampFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.InvalidTimestamp(s)
}
