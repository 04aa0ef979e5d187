package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFormat = errors.New("unknown report format")

// Format selects both which data is assembled and how leaves are stringified.
type Format string

const (
	FormatNone             Format = "none"
	FormatSummary          Format = "summary"
	FormatVerbose          Format = "verbose"
	FormatRaw              Format = "raw"
	FormatJSONSummary      Format = "json-summary"
	FormatJSON             Format = "json"
	FormatJSONVerbose      Format = "json-verbose"
	FormatParseableSummary Format = "parseable-summary"
	FormatParseableVerbose Format = "parseable-verbose"
)

var allFormats = []Format{
	FormatNone, FormatSummary, FormatVerbose, FormatRaw,
	FormatJSONSummary, FormatJSON, FormatJSONVerbose,
	FormatParseableSummary, FormatParseableVerbose,
}

// Formats lists every accepted format selector.
func Formats() []Format {
	out := make([]Format, len(allFormats))
	copy(out, allFormats)
	return out
}

func ParseFormat(s string) (Format, error) {
	for _, f := range allFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) IsJSON() bool      { return strings.HasPrefix(string(f), "json") }
func (f Format) IsParseable() bool { return strings.Contains(string(f), "parseable") }
func (f Format) IsVerbose() bool   { return strings.Contains(string(f), "verbose") }
