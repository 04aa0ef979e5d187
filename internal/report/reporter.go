package report

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

var (
	ErrReportCreated = errors.New("report already created")
	ErrNotAccepting  = errors.New("reporter no longer accepts rows")
)

type state int

const (
	stateIdle state = iota
	stateAccepting
	stateFinalizing
	stateRendered
)

// Report is the outcome of one reduction: text for the textual formats, an
// ordered tree for the JSON formats.
type Report struct {
	Format domain.Format
	Text   string
	Data   *Tree
}

// Reporter reduces the worker rows of one payload into a summary and renders it.
// A Reporter produces exactly one report.
type Reporter struct {
	payload *domain.Payload
	format  domain.Format
	printer Printer
	cfg     *config
	log     *slog.Logger

	state     state
	instances int
	summary   *Tree
	rows      []*Tree

	timelines    Timelines
	accumulators Accumulators
	copier       FieldCopier
	headers      map[string][]string

	expectRowData bool
	err           error
}

func NewReporter(payload *domain.Payload, format domain.Format, opts ...Option) (*Reporter, error) {
	cfg := applyOptions(opts)
	r := &Reporter{
		payload:       payload,
		format:        format,
		printer:       NewPrinter(format),
		cfg:           cfg,
		log:           cfg.logger,
		summary:       NewTree(),
		headers:       make(map[string][]string),
		expectRowData: true,
	}
	r.summary.Set("cpu_time", 0.0)
	r.summary.Set("runtime", 0.0)
	r.summary.Set("total_instances", 0)
	r.AddExplicitTimelineVars("data_start_time", "data_end_time", "pod_start_time", "pod_create_time")
	r.AddAccumulators("user_cpu_time", "system_cpu_time", "cpu_time", "data_elapsed_time",
		"timing_parameters.sync_rtt_delta")
	if err := cfg.extension.Configure(r); err != nil {
		return nil, fmt.Errorf("configure %T: %w", cfg.extension, err)
	}
	r.log.Debug("reporter configured", "job", payload.Metadata.JobName,
		"timelines", r.timelines.Names(), "accumulators", r.accumulators.Names(),
		"copy_fields", r.copier.Names())
	return r, nil
}

func (r *Reporter) Payload() *domain.Payload { return r.payload }
func (r *Reporter) Format() domain.Format    { return r.format }
func (r *Reporter) Printer() Printer         { return r.printer }
func (r *Reporter) Summary() *Tree           { return r.summary }
func (r *Reporter) Rows() []*Tree            { return r.rows }
func (r *Reporter) Logger() *slog.Logger     { return r.log }

// AddExplicitTimelineVars registers timeline variables that only get first_ and
// last_ values.
func (r *Reporter) AddExplicitTimelineVars(names ...string) {
	r.timelines.RegisterExplicit(names...)
}

// AddTimelineVars registers <base>_start/<base>_end pairs; the synthesized
// <base>_elapsed_time is copied into rows.
func (r *Reporter) AddTimelineVars(bases ...string) {
	for _, name := range r.timelines.Register(bases...) {
		r.copier.fields = append(r.copier.fields, copyField{name: name, path: strings.Split(name, ".")})
	}
}

func (r *Reporter) AddAccumulators(names ...string) {
	r.accumulators.Register(names...)
}

// AddFieldsToCopy registers fields copied verbatim (or formatted, with
// :key=value directives) into rows and the summary.
func (r *Reporter) AddFieldsToCopy(specs ...string) error {
	return r.copier.Register(specs...)
}

func (r *Reporter) SetDetailHeaders(headers ...string)  { r.headers["Detail"] = headers }
func (r *Reporter) SetSummaryHeaders(headers ...string) { r.headers["Summary"] = headers }

// SetExpectRowData controls whether a summary is produced for a payload
// without rows.
func (r *Reporter) SetExpectRowData(b bool) { r.expectRowData = b }

// Pretty formats v, remembering the first formatting error for CreateReport.
func (r *Reporter) Pretty(v any, nf NumberFormat) any {
	out, err := r.printer.Format(v, nf)
	if err != nil {
		r.fail(err)
		return "N/A"
	}
	return out
}

// Ratio formats num/denom like Pretty, yielding "N/A" for an undefined quotient.
func (r *Reporter) Ratio(num, denom float64, nf NumberFormat) any {
	out, err := r.printer.Ratio(num, denom, nf)
	if err != nil {
		r.fail(err)
		return "N/A"
	}
	return out
}

func (r *Reporter) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// CreateRow ingests one worker result and returns its index in the row list.
func (r *Reporter) CreateRow(row domain.RawRow) (int, error) {
	switch r.state {
	case stateIdle:
		r.state = stateAccepting
	case stateAccepting:
	default:
		return -1, ErrNotAccepting
	}
	r.instances++
	r.summary.Set("total_instances", r.instances)

	rowhash := NewTree()
	if ns, ok := row["namespace"]; ok {
		rowhash.Set("namespace", ns)
		rowhash.Set("pod", row["pod"])
		rowhash.Set("container", row["container"])
		if node, ok := r.cfg.locator.NodeFor(fmt.Sprint(ns), fmt.Sprint(row["pod"])); ok {
			rowhash.Set("node", node)
		} else {
			rowhash.Set("node", nil)
		}
		rowhash.Set("process_id", row["process_id"])
		r.timelines.Update(row, r.summary)
		r.accumulators.Update(row, r.summary, rowhash)
		if err := r.copier.Copy(r.printer, row, r.summary, rowhash); err != nil {
			return -1, fmt.Errorf("copy fields: %w", err)
		}
	}
	r.rows = append(r.rows, rowhash)
	return len(r.rows) - 1, nil
}

// CreateReport ingests every worker result of the payload, finalizes the summary
// and renders the report.
func (r *Reporter) CreateReport() (*Report, error) {
	if r.state >= stateFinalizing {
		return nil, ErrReportCreated
	}
	for _, row := range r.payload.Results.WorkerResults {
		if _, err := r.CreateRow(row); err != nil {
			return nil, err
		}
	}
	r.state = stateFinalizing
	defer func() { r.state = stateRendered }()
	if len(r.rows) > 0 {
		r.finalize()
	}

	var (
		rep *Report
		err error
	)
	if r.format.IsJSON() {
		rep, err = r.jsonReport()
	} else {
		rep, err = r.textReport()
	}
	if err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	return rep, nil
}

// rowName is the identity key used to order the detail section.
func rowName(row *Tree) string {
	ns, ok := row.Get("namespace")
	if !ok {
		return ""
	}
	pod, _ := row.Get("pod")
	container, _ := row.Get("container")
	pid, _ := row.Number("process_id")
	return fmt.Sprintf("%v~%v~%v~%07d", ns, pod, container, int64(pid))
}

// sortedRows returns the rows ordered by identity; r.rows keeps insertion order.
func (r *Reporter) sortedRows() []*Tree {
	rows := make([]*Tree, len(r.rows))
	copy(rows, r.rows)
	sort.SliceStable(rows, func(i, j int) bool { return rowName(rows[i]) < rowName(rows[j]) })
	return rows
}

func (r *Reporter) buildSections(results *Tree) error {
	if r.format.IsVerbose() && len(r.rows) > 0 {
		detail := results.Subtree("Detail")
		for _, row := range r.sortedRows() {
			if err := r.cfg.extension.ExtendRow(r, detail, row); err != nil {
				return fmt.Errorf("generate row: %w", err)
			}
		}
	}
	if len(r.rows) > 0 || !r.expectRowData {
		summary := results.Subtree("Summary")
		r.generateSummary(summary)
		if err := r.cfg.extension.ExtendSummary(r, summary); err != nil {
			return fmt.Errorf("generate summary: %w", err)
		}
	}
	return nil
}

func (r *Reporter) jsonReport() (*Report, error) {
	if err := r.buildSections(NewTree()); err != nil {
		return nil, err
	}
	answer := NewTree()
	switch r.format {
	case domain.FormatJSONSummary:
		answer.Set("summary", r.summary)
		answer.Set("metadata", r.payload.MetadataRaw)
	case domain.FormatJSON:
		answer.Set("summary", r.summary)
		answer.Set("metadata", r.payload.MetadataRaw)
		answer.Set("rows", r.rowList())
	default:
		answer = TreeFromMap(r.payload.Raw)
		processed := NewTree()
		processed.Set("summary", r.summary)
		processed.Set("rows", r.rowList())
		answer.Set("processed_results", processed)
	}
	return &Report{Format: r.format, Data: answer}, nil
}

func (r *Reporter) rowList() []*Tree {
	if r.rows == nil {
		return []*Tree{}
	}
	return r.rows
}

func (r *Reporter) textReport() (*Report, error) {
	md := r.payload.Metadata
	results := NewTree()
	overview := results.Subtree("Overview")
	overview.Set("Job Name", md.JobName)
	overview.Set("Start Time", md.ClusterStartTime)
	if err := r.buildSections(results); err != nil {
		return nil, err
	}
	if results.Has("Summary") {
		overview.Set("Status", "Success")
	} else {
		overview.Set("Status", "FAILED, no data generated")
	}
	overview.Set("Workload", md.Workload)
	overview.Set("Job UUID", md.RunUUID)
	overview.Set("Run host", md.RunHost)
	overview.Set("Artifact Directory", md.ArtifactDirectory)
	overview.Set("Kubernetes version", md.KubernetesVersion.ServerVersion.GitVersion)
	if md.KubernetesVersion.OpenshiftVersion != "" {
		overview.Set("OpenShift Version", md.KubernetesVersion.OpenshiftVersion)
	}

	keyWidth, intWidth := ComputeWidths(results, r.cfg.indent)
	cmdline := strings.Join(md.ExpandedCommandLine, " ")
	if !r.format.IsParseable() {
		cmdline = WrapText(cmdline, r.cfg.reportWidth)
	}
	overview.Set("Command line", cmdline)

	var b strings.Builder
	err := Render(&b, results, RenderContext{
		Format:       r.format,
		Indent:       r.cfg.indent,
		JobName:      md.JobName,
		Headers:      r.headers,
		KeyWidth:     keyWidth,
		IntegerWidth: intWidth,
	})
	if err != nil {
		return nil, err
	}
	return &Report{Format: r.format, Text: b.String()}, nil
}
