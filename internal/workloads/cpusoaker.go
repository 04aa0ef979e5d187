package workloads

import (
	"fmt"

	"github.com/HaPhanBaoMinh/cbreport/internal/report"
)

func init() {
	Register("cpusoaker", func() report.Extension { return &CPUSoaker{} })
}

var iterations = report.Fmt(3).In(1000).Unit(" it")
var iterationRate = report.Fmt(3).In(1000).Unit(" it/sec")

// CPUSoaker reports busy-loop iteration throughput.
type CPUSoaker struct {
	report.BaseExtension
}

func (CPUSoaker) Configure(r *report.Reporter) error {
	r.AddAccumulators("work_iterations")
	r.SetDetailHeaders("namespace", "pod", "container", "process_id")
	return nil
}

func (CPUSoaker) ExtendSummary(r *report.Reporter, results *report.Tree) error {
	s := r.Summary()
	work, _ := s.Number("work_iterations")
	runInterval, _ := s.Number("data_run_interval")
	cpu, _ := s.Number("cpu_time")

	results.Set("Iterations", r.Pretty(work, iterations.AsInteger()))
	s.Set("work_iterations_sec", report.DivOrZero(work, runInterval))
	results.Set("Iterations/sec", r.Ratio(work, runInterval, iterationRate))
	s.Set("work_iterations_cpu_sec", report.DivOrZero(work, cpu))
	results.Set("Iterations/CPU sec", r.Ratio(work, cpu, iterationRate))
	return nil
}

func (CPUSoaker) ExtendRow(r *report.Reporter, detail, row *report.Tree) error {
	work, _ := row.Number("work_iterations")
	elapsed, _ := row.Number("data_elapsed_time")
	cpu, _ := row.Number("cpu_time")

	result := report.NewTree()
	result.Set("Elapsed Time", report.FormatFixed(elapsed, 3))
	result.Set("Iterations", r.Pretty(work, iterations.AsInteger()))
	row.Set("work_iterations_sec", report.DivOrZero(work, elapsed))
	result.Set("Iterations/sec", r.Ratio(work, elapsed, iterationRate))
	row.Set("work_iterations_cpu_sec", report.DivOrZero(work, cpu))
	result.Set("Iterations/CPU sec", r.Ratio(work, cpu, iterationRate))
	detail.InsertPath(detailPath(row), result)
	return nil
}

// detailPath places a row under namespace, pod, container and process.
func detailPath(row *report.Tree) []string {
	path := make([]string, 0, 4)
	for _, k := range []string{"namespace", "pod", "container", "process_id"} {
		v, _ := row.Get(k)
		path = append(path, fmt.Sprint(v))
	}
	return path
}
