// Package analysis condenses the summaries of many runs into per-workload
// comparisons (CI records, spreadsheets, plain summaries).
package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

var ErrIncompatibleReports = errors.New("incompatible report types")

// TypeMismatchError is returned when workload analyzers of one run disagree on
// whether they produce text or structured data.
type TypeMismatchError struct {
	Workload string
	Expected Kind
	Found    Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("incompatible report types for %s: expect %s, found %s", e.Workload, e.Expected, e.Found)
}

func (e *TypeMismatchError) Unwrap() error { return ErrIncompatibleReports }

// Kind classifies an analyzer result.
type Kind int

const (
	KindNone Kind = iota
	KindText
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMapping:
		return "mapping"
	}
	return "none"
}

func kindOf(v any) (Kind, error) {
	switch v.(type) {
	case nil:
		return KindNone, nil
	case string:
		return KindText, nil
	case map[string]any, []any:
		return KindMapping, nil
	}
	return KindNone, fmt.Errorf("unexpected report type %T, expect either text or mapping", v)
}

// Analyzer produces either a string or a mapping for one workload.
type Analyzer interface {
	Analyze() (any, error)
}

// Factory builds an analyzer from a workload name, that workload's data and the
// run metadata.
type Factory func(workload string, data any, metadata map[string]any) Analyzer

// Postprocessor rewrites the combined answer of a report type.
type Postprocessor func(answer any, status, metadata map[string]any) any

// Report types.
const (
	TypeCI          = "ci"
	TypeSpreadsheet = "spreadsheet"
	TypeSummary     = "summary"
	TypeRaw         = "raw"
)

// Types lists the accepted report types.
func Types() []string {
	return []string{TypeCI, TypeSpreadsheet, TypeSummary, TypeRaw}
}

var (
	mu             sync.RWMutex
	analyzers      = map[string]map[string]Factory{}
	postprocessors = map[string]Postprocessor{}
)

// Register binds an analyzer for workload under a report type.
func Register(reportType, workload string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if analyzers[reportType] == nil {
		analyzers[reportType] = map[string]Factory{}
	}
	analyzers[reportType][workload] = f
}

// RegisterPostprocessor installs the postprocessing step of a report type.
func RegisterPostprocessor(reportType string, p Postprocessor) {
	mu.Lock()
	defer mu.Unlock()
	postprocessors[reportType] = p
}

func lookup(reportType, workload string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := analyzers[reportType][workload]
	return f, ok
}

// Analysis runs the analyzers of one report type over a collected data set.
type Analysis struct {
	data       map[string]any
	reportType string
	log        *slog.Logger
}

// New returns an Analysis; an empty report type means ci.
func New(data map[string]any, reportType string, log *slog.Logger) *Analysis {
	if reportType == "" {
		reportType = TypeCI
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analysis{data: data, reportType: reportType, log: log}
}

// Analyze runs every workload's analyzer in name order. Text answers are joined
// with blank lines; mapping answers are keyed by workload and gain a metadata
// block. Workloads without an analyzer are skipped with a warning.
func (a *Analysis) Analyze() (any, error) {
	if a.data == nil {
		return nil, nil
	}
	if a.reportType == TypeRaw {
		return a.data, nil
	}
	metadata, _ := a.data["metadata"].(map[string]any)
	status, _ := a.data["status"].(map[string]any)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if status == nil {
		status = map[string]any{}
	}

	names := make([]string, 0, len(a.data))
	for k := range a.data {
		if k != "metadata" && k != "status" {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	kind := KindNone
	answers := map[string]any{}
	var order []string
	for _, workload := range names {
		f, ok := lookup(a.reportType, workload)
		if !ok {
			a.log.Warn("no analyzer for workload", "workload", workload, "type", a.reportType)
			continue
		}
		v, err := f(workload, a.data[workload], metadata).Analyze()
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", workload, err)
		}
		k, err := kindOf(v)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", workload, err)
		}
		if kind == KindNone {
			kind = k
		} else if k != kind {
			return nil, &TypeMismatchError{Workload: workload, Expected: kind, Found: k}
		}
		answers[workload] = v
		order = append(order, workload)
	}

	switch kind {
	case KindText:
		parts := make([]string, 0, len(order))
		for _, w := range order {
			parts = append(parts, answers[w].(string))
		}
		return a.postprocess(strings.Join(parts, "\n\n"), status, metadata), nil
	case KindMapping:
		md := map[string]any{}
		for k, v := range metadata {
			md[k] = v
		}
		for _, k := range []string{"result", "job_start", "job_end", "job_runtime"} {
			if v, ok := status[k]; ok {
				md[k] = v
			}
		}
		if failed, ok := status["failed"].([]any); ok && len(failed) > 0 {
			md["failed"] = failed
		}
		answers["metadata"] = md
		return a.postprocess(answers, status, metadata), nil
	}
	return nil, nil
}

func (a *Analysis) postprocess(answer any, status, metadata map[string]any) any {
	mu.RLock()
	p, ok := postprocessors[a.reportType]
	mu.RUnlock()
	if !ok {
		return answer
	}
	return p(answer, status, metadata)
}
