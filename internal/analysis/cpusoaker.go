package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
	"github.com/HaPhanBaoMinh/cbreport/internal/report"
)

func init() {
	for _, t := range []string{TypeCI, TypeSummary, TypeSpreadsheet} {
		t := t
		Register(t, "cpusoaker", func(workload string, data any, metadata map[string]any) Analyzer {
			return &cpusoakerAnalysis{reportType: t, workload: workload, data: data, metadata: metadata}
		})
	}
}

// runtimeStats aggregates the jobs of one runtime class.
type runtimeStats struct {
	Jobs              int
	Pods              float64
	IterationsPerSec  float64
	IterationsPerCPU  float64
	CPUUtilization    float64
	ElapsedTime       float64
	jobNames          []string
	perJobIterRate    map[string]float64
	perJobCPUUtilized map[string]float64
}

type cpusoakerAnalysis struct {
	reportType string
	workload   string
	data       any
	metadata   map[string]any
}

func (c *cpusoakerAnalysis) Analyze() (any, error) {
	byRuntime, ok := c.data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected runtime class mapping, got %T", c.workload, c.data)
	}
	stats := map[string]*runtimeStats{}
	for rc, v := range byRuntime {
		jobs, ok := v.(map[string]any)
		if !ok {
			continue
		}
		st := &runtimeStats{perJobIterRate: map[string]float64{}, perJobCPUUtilized: map[string]float64{}}
		for name, sv := range jobs {
			summary, _ := sv.(map[string]any)
			st.Jobs++
			st.jobNames = append(st.jobNames, name)
			st.Pods += number(summary, "total_instances")
			rate := number(summary, "work_iterations_sec")
			util := number(summary, "cpu_utilization")
			st.IterationsPerSec += rate
			st.IterationsPerCPU += number(summary, "work_iterations_cpu_sec")
			st.CPUUtilization += util
			st.ElapsedTime += number(summary, "data_run_interval")
			st.perJobIterRate[name] = rate
			st.perJobCPUUtilized[name] = util
		}
		sort.Strings(st.jobNames)
		if st.Jobs > 0 {
			n := float64(st.Jobs)
			st.IterationsPerSec /= n
			st.IterationsPerCPU /= n
			st.CPUUtilization /= n
			st.ElapsedTime /= n
		}
		stats[rc] = st
	}
	switch c.reportType {
	case TypeSpreadsheet:
		return c.spreadsheet(stats), nil
	case TypeSummary:
		return c.summary(stats), nil
	}
	return c.ci(stats), nil
}

func (c *cpusoakerAnalysis) ci(stats map[string]*runtimeStats) map[string]any {
	answer := map[string]any{}
	for rc, st := range stats {
		answer[rc] = map[string]any{
			"jobs":                    st.Jobs,
			"pods":                    st.Pods,
			"work_iterations_sec":     st.IterationsPerSec,
			"work_iterations_cpu_sec": st.IterationsPerCPU,
			"cpu_utilization":         st.CPUUtilization,
			"elapsed_time":            st.ElapsedTime,
		}
	}
	if kata, runc := stats["kata"], stats["runc"]; kata != nil && runc != nil {
		answer["ratio"] = map[string]any{
			"work_iterations_sec":     report.DivOrZero(kata.IterationsPerSec, runc.IterationsPerSec),
			"work_iterations_cpu_sec": report.DivOrZero(kata.IterationsPerCPU, runc.IterationsPerCPU),
		}
	}
	return answer
}

func (c *cpusoakerAnalysis) summary(stats map[string]*runtimeStats) map[string]any {
	answer := map[string]any{}
	for rc, st := range stats {
		jobs := map[string]any{}
		for _, name := range st.jobNames {
			jobs[name] = map[string]any{
				"work_iterations_sec": st.perJobIterRate[name],
				"cpu_utilization":     st.perJobCPUUtilized[name],
			}
		}
		answer[rc] = map[string]any{
			"work_iterations_sec": st.IterationsPerSec,
			"jobs":                jobs,
		}
	}
	return answer
}

func (c *cpusoakerAnalysis) spreadsheet(stats map[string]*runtimeStats) string {
	p := report.NewPrinter(domain.FormatSummary)
	pretty := func(v float64) string {
		s, err := p.Format(v, report.Fmt(3).In(0))
		if err != nil {
			return "N/A"
		}
		return fmt.Sprint(s)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Workload: %s\n", c.workload)
	if uuid, ok := c.metadata["uuid"]; ok {
		fmt.Fprintf(&b, "uuid: %v\n", uuid)
	}
	b.WriteString("\nRuntime\tJobs\tPods\tIterations/sec\tIterations/CPU sec\tCPU utilization\n")
	runtimes := make([]string, 0, len(stats))
	for rc := range stats {
		runtimes = append(runtimes, rc)
	}
	sort.Strings(runtimes)
	for _, rc := range runtimes {
		st := stats[rc]
		fmt.Fprintf(&b, "%s\t%d\t%s\t%s\t%s\t%s\n", rc, st.Jobs, pretty(st.Pods),
			pretty(st.IterationsPerSec), pretty(st.IterationsPerCPU), pretty(st.CPUUtilization))
	}
	if kata, runc := stats["kata"], stats["runc"]; kata != nil && runc != nil {
		fmt.Fprintf(&b, "ratio\t\t\t%s\t%s\t\n",
			pretty(report.DivOrZero(kata.IterationsPerSec, runc.IterationsPerSec)),
			pretty(report.DivOrZero(kata.IterationsPerCPU, runc.IterationsPerCPU)))
	}
	return b.String()
}

func number(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
