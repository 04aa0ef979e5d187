package workloads

import (
	"github.com/HaPhanBaoMinh/cbreport/internal/report"
)

func init() {
	Register("memory", func() report.Extension { return &Memory{} })
}

// Memory reports pods that hold a block of memory for a fixed time. Only
// timing and CPU figures are available per worker.
type Memory struct {
	report.BaseExtension
}

func (Memory) Configure(r *report.Reporter) error {
	r.SetDetailHeaders("namespace", "pod", "container", "process_id")
	return nil
}

func (Memory) ExtendRow(r *report.Reporter, detail, row *report.Tree) error {
	elapsed, _ := row.Number("data_elapsed_time")
	user, _ := row.Number("user_cpu_time")
	sys, _ := row.Number("system_cpu_time")
	secs := report.Fmt(3).Unit("sec")

	result := report.NewTree()
	result.Set("Elapsed Time", report.FormatFixed(elapsed, 3))
	result.Set("User CPU time", r.Pretty(user, secs))
	result.Set("System CPU time", r.Pretty(sys, secs))
	result.Set("CPU utilization", r.Ratio(user+sys, elapsed, report.Fmt(3).In(100).Unit("%")))
	detail.InsertPath(detailPath(row), result)
	return nil
}
