package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

type fakeLocator struct {
	nodes    map[string]string
	sameNode bool
}

func (l fakeLocator) NodeFor(ns, pod string) (string, bool) {
	n, ok := l.nodes[ns+"/"+pod]
	return n, ok
}

func (l fakeLocator) ClientsOnSameNode() bool { return l.sameNode }

// elapsedExtension lists every row's elapsed time in the detail section.
type elapsedExtension struct {
	BaseExtension
	expectRows bool
}

func (e elapsedExtension) Configure(r *Reporter) error {
	r.SetDetailHeaders("namespace", "pod", "container", "process_id")
	r.SetExpectRowData(e.expectRows)
	return nil
}

func (elapsedExtension) ExtendRow(r *Reporter, detail, row *Tree) error {
	elapsed, _ := row.Number("data_elapsed_time")
	path := make([]string, 0, 4)
	for _, k := range []string{"namespace", "pod", "container", "process_id"} {
		v, _ := row.Get(k)
		path = append(path, fmt.Sprint(v))
	}
	detail.InsertPath(append(path, "Elapsed Time"), r.Pretty(elapsed, Fmt(3).Unit("sec")))
	return nil
}

func workerRow(pod string, pid int, start, end float64) domain.RawRow {
	return domain.RawRow{
		"namespace":         "cb-0",
		"pod":               pod,
		"container":         "c0",
		"process_id":        pid,
		"pod_create_time":   start - 2,
		"pod_start_time":    start - 1,
		"data_start_time":   start,
		"data_end_time":     end,
		"data_elapsed_time": end - start,
		"user_cpu_time":     1.5,
		"system_cpu_time":   0.5,
		"cpu_time":          2.0,
	}
}

func testPayload(rows ...domain.RawRow) *domain.Payload {
	md := map[string]any{"job_name": "cpusoaker-runc-0000", "workload": "cpusoaker"}
	return &domain.Payload{
		Metadata: domain.Metadata{
			JobName:             "cpusoaker-runc-0000",
			Workload:            "cpusoaker",
			RunUUID:             "b4c1",
			ExpandedCommandLine: []string{"clusterbuster", "--workload=cpusoaker"},
		},
		MetadataRaw: md,
		Results:     domain.Results{WorkerResults: rows},
		Raw:         map[string]any{"metadata": md},
	}
}

func createReport(t *testing.T, p *domain.Payload, f domain.Format, opts ...Option) (*Reporter, *Report) {
	t.Helper()
	r, err := NewReporter(p, f, opts...)
	require.NoError(t, err)
	rep, err := r.CreateReport()
	require.NoError(t, err)
	return r, rep
}

func TestReporterSyncError(t *testing.T) {
	p := testPayload(workerRow("p0", 1, 0, 100), workerRow("p1", 1, 2, 102))
	p.Results.WorkerResults[1]["data_end_time"] = 104.0
	p.Results.WorkerResults[1]["data_elapsed_time"] = 100.0

	r, _ := createReport(t, p, domain.FormatJSONSummary)
	s := r.Summary()
	num := func(k string) float64 {
		v, ok := s.Number(k)
		require.True(t, ok, k)
		return v
	}
	assert.Equal(t, 2.0, num("data_start_interval"))
	assert.Equal(t, 4.0, num("data_end_interval"))
	assert.InDelta(t, 3.0, num("absolute_sync_error"), 1e-9)
	assert.InDelta(t, 0.03, num("relative_sync_error"), 1e-9)
	assert.InDelta(t, 100.0, num("elapsed_time_average"), 1e-9)
	assert.Equal(t, 104.0, num("data_run_interval"))
	assert.InDelta(t, 4.0/104.0, num("cpu_utilization"), 1e-9)
	assert.Equal(t, 2.0, num("total_instances"))
}

func TestReporterSyncRowsNeedSharedClock(t *testing.T) {
	p := func() *domain.Payload {
		return testPayload(workerRow("p0", 1, 0, 100), workerRow("p1", 1, 2, 104))
	}
	apart := fakeLocator{nodes: map[string]string{"cb-0/p0": "w0", "cb-0/p1": "w1"}}

	_, rep := createReport(t, p(), domain.FormatSummary, WithPodLocator(apart))
	assert.NotContains(t, rep.Text, "Absolute sync error")
	assert.Contains(t, rep.Text, "Run start interval")

	_, rep = createReport(t, p(), domain.FormatSummary, WithPodLocator(apart), WithSynchronizedClocks(true))
	assert.Contains(t, rep.Text, "Absolute sync error")
	assert.Contains(t, rep.Text, "Relative sync error")

	r, _ := createReport(t, p(), domain.FormatJSON, WithPodLocator(apart))
	assert.True(t, r.Summary().Has("absolute_sync_error"))
	node, _ := r.Rows()[1].Get("node")
	assert.Equal(t, "w1", node)
}

func TestReporterJSONSections(t *testing.T) {
	p := testPayload(workerRow("p0", 1, 0, 10), workerRow("p1", 1, 1, 11))

	_, rep := createReport(t, p, domain.FormatJSONSummary)
	assert.Equal(t, []string{"summary", "metadata"}, rep.Data.Keys())

	_, rep = createReport(t, testPayload(workerRow("p0", 1, 0, 10)), domain.FormatJSON)
	assert.Equal(t, []string{"summary", "metadata", "rows"}, rep.Data.Keys())
	b, err := json.Marshal(rep.Data)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	rows := decoded["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "p0", rows[0].(map[string]any)["pod"])

	_, rep = createReport(t, testPayload(workerRow("p0", 1, 0, 10)), domain.FormatJSONVerbose)
	assert.Equal(t, []string{"metadata", "processed_results"}, rep.Data.Keys())
	processed, ok := rep.Data.Lookup("processed_results", "summary", "total_instances")
	require.True(t, ok)
	assert.Equal(t, 1, processed)
}

func TestReporterDetailIndependentOfRowOrder(t *testing.T) {
	rows := func() []domain.RawRow {
		return []domain.RawRow{
			workerRow("p1", 7, 1, 11),
			workerRow("p0", 12, 0, 10),
			workerRow("p0", 3, 0.5, 10.5),
			workerRow("p2", 1, 2, 12),
		}
	}
	ext := WithExtension(elapsedExtension{expectRows: true})

	_, base := createReport(t, testPayload(rows()...), domain.FormatVerbose, ext)
	for _, perm := range [][]int{{3, 2, 1, 0}, {2, 0, 3, 1}} {
		src := rows()
		shuffled := make([]domain.RawRow, len(src))
		for i, j := range perm {
			shuffled[i] = src[j]
		}
		_, rep := createReport(t, testPayload(shuffled...), domain.FormatVerbose, ext)
		assert.Equal(t, base.Text, rep.Text)
	}

	// pid 3 sorts before pid 12 as the id is zero padded
	assert.Less(t, strings.Index(base.Text, "process_id: 3:"), strings.Index(base.Text, "process_id: 12:"))
	assert.Contains(t, base.Text, "Detail:\n  namespace: cb-0:\n    pod: p0:\n")
}

func TestReporterOneReportOnly(t *testing.T) {
	r, err := NewReporter(testPayload(workerRow("p0", 1, 0, 10)), domain.FormatSummary)
	require.NoError(t, err)
	_, err = r.CreateReport()
	require.NoError(t, err)

	_, err = r.CreateReport()
	assert.ErrorIs(t, err, ErrReportCreated)
	_, err = r.CreateRow(workerRow("p1", 1, 0, 10))
	assert.ErrorIs(t, err, ErrNotAccepting)
}

func TestReporterCountsUnidentifiedRows(t *testing.T) {
	p := testPayload(workerRow("p0", 1, 0, 10), domain.RawRow{"data_elapsed_time": 99.0})
	r, _ := createReport(t, p, domain.FormatJSON)

	n, _ := r.Summary().Number("total_instances")
	assert.Equal(t, 2.0, n)
	elapsed, _ := r.Summary().Number("data_elapsed_time")
	assert.Equal(t, 10.0, elapsed)
	require.Len(t, r.Rows(), 2)
	assert.Equal(t, 0, r.Rows()[1].Len())
}

func TestReporterStatusWithoutRows(t *testing.T) {
	_, rep := createReport(t, testPayload(), domain.FormatSummary)
	assert.Contains(t, rep.Text, "FAILED, no data generated")
	assert.NotContains(t, rep.Text, "Summary:")
	assert.Contains(t, rep.Text, "Job Name:")

	_, rep = createReport(t, testPayload(), domain.FormatSummary, WithExtension(elapsedExtension{}))
	assert.Contains(t, rep.Text, "Status:")
	assert.Contains(t, rep.Text, "Success")
	assert.Contains(t, rep.Text, "Total Clients:")
}

func TestReporterParseableText(t *testing.T) {
	_, rep := createReport(t, testPayload(workerRow("p0", 1, 0, 10)), domain.FormatParseableSummary)
	lines := strings.Split(strings.TrimSpace(rep.Text), "\n")
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "cpusoaker-runc-0000."), l)
	}
	assert.Contains(t, rep.Text, "cpusoaker-runc-0000.overview.command_line: clusterbuster --workload=cpusoaker\n")
	assert.Contains(t, rep.Text, "cpusoaker-runc-0000.summary.total_clients: 1\n")
}

func TestReporterRelativeSyncErrorWithoutElapsed(t *testing.T) {
	p := testPayload(workerRow("p0", 1, 5, 5), workerRow("p1", 1, 6, 6))
	r, rep := createReport(t, p, domain.FormatSummary)

	assert.Regexp(t, `Relative sync error:\s+N/A\n`, rep.Text)
	assert.Regexp(t, `Absolute sync error:\s+1\.000 sec\n`, rep.Text)
	rel, ok := r.Summary().Number("relative_sync_error")
	require.True(t, ok)
	assert.Equal(t, 0.0, rel)
}

func TestReporterRTTRowsNeedSamples(t *testing.T) {
	row := workerRow("p0", 1, 0, 10)
	row["timing_parameters"] = map[string]any{"other": 1}
	r, rep := createReport(t, testPayload(row), domain.FormatSummary)
	assert.NotContains(t, rep.Text, "RTT delta")
	assert.False(t, r.Summary().Has("timing_parameters"))
	assert.False(t, r.Rows()[0].Has("timing_parameters"))

	row = workerRow("p0", 1, 0, 10)
	row["timing_parameters"] = map[string]any{"sync_rtt_delta": 0.002}
	_, rep = createReport(t, testPayload(row), domain.FormatSummary)
	assert.Contains(t, rep.Text, "Sync max RTT delta:")
	assert.Contains(t, rep.Text, "Sync avg RTT delta:")
}

// buildExtension shows the build label copied from every row.
type buildExtension struct{ BaseExtension }

func (buildExtension) Configure(r *Reporter) error {
	return r.AddFieldsToCopy("build.label:precision=2:base=0")
}

func (buildExtension) ExtendSummary(r *Reporter, results *Tree) error {
	v, _ := r.Summary().Lookup("build", "label")
	results.Set("Build", r.Pretty(v, Fmt(2).In(0)))
	return nil
}

func TestReporterNonNumericLeafPrintsAsText(t *testing.T) {
	row := workerRow("p0", 1, 0, 10)
	row["build"] = map[string]any{"label": "nightly-42"}
	_, rep := createReport(t, testPayload(row), domain.FormatSummary, WithExtension(buildExtension{}))
	assert.Regexp(t, `Build:\s+nightly-42\n`, rep.Text)
}
