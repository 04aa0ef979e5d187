package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
	"github.com/HaPhanBaoMinh/cbreport/internal/report"
)

func entry(job string) Entry {
	return Entry{Source: job, Payload: &domain.Payload{
		Metadata: domain.Metadata{JobName: job, Workload: "cpusoaker", RuntimeClass: "runc"},
	}}
}

func jsonReport(rate float64) *report.Report {
	data := report.NewTree()
	s := data.Subtree("summary")
	s.Set("total_instances", 2)
	s.Set("work_iterations_sec", rate)
	s.Set("cpu_utilization", 0.5)
	var rows []*report.Tree
	for _, work := range []float64{100, 300} {
		row := report.NewTree()
		row.Set("work_iterations", work)
		row.Set("data_elapsed_time", 10.0)
		rows = append(rows, row)
	}
	data.Set("rows", rows)
	return &report.Report{Format: domain.FormatJSON, Data: data}
}

func fakeRender(rates map[string]float64) RenderFunc {
	return func(_ context.Context, p *domain.Payload, f domain.Format) (*report.Report, error) {
		if f.IsJSON() {
			return jsonReport(rates[p.Metadata.JobName]), nil
		}
		return &report.Report{Format: f, Text: string(f) + " " + p.Metadata.JobName}, nil
	}
}

func TestStatsFrom(t *testing.T) {
	st := statsFrom(jsonReport(40))
	assert.Equal(t, 2, st.clients)
	assert.Equal(t, "OK", st.status)
	assert.Equal(t, 40.0, st.iterRate)
	assert.Equal(t, []float64{10, 30}, st.iterations)

	assert.Equal(t, "FAILED", statsFrom(nil).status)
}

func TestLoadAndSort(t *testing.T) {
	m := New([]Entry{entry("job-a"), entry("job-b")}, fakeRender(map[string]float64{"job-a": 10, "job-b": 20}))
	mdl, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = mdl.(Model)

	msg := m.Init()()
	stats, ok := msg.(statsMsg)
	require.True(t, ok)
	mdl, cmd := m.Update(stats)
	m = mdl.(Model)
	assert.Equal(t, []int{0, 1}, m.order)
	require.NotNil(t, cmd)
	rep, ok := cmd().(reportMsg)
	require.True(t, ok)
	assert.Equal(t, "summary job-a", rep.text)

	mdl, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = mdl.(Model)
	assert.Equal(t, "rate", m.sortBy)
	assert.Equal(t, []int{1, 0}, m.order)
	require.NotNil(t, cmd)
	rep = cmd().(reportMsg)
	assert.Equal(t, "summary job-b", rep.text)

	mdl, cmd = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = mdl.(Model)
	assert.Equal(t, ViewVerbose, m.view)
	rep = cmd().(reportMsg)
	assert.Equal(t, "verbose job-b", rep.text)

	mdl, _ = m.Update(rep)
	m = mdl.(Model)
	assert.Contains(t, m.View(), "reports: 2")
}

func TestReportColWidths(t *testing.T) {
	var m Model
	job, _, _, _, _, _, trend := m.reportColWidths(200)
	assert.Equal(t, 48, job)
	assert.Equal(t, 40, trend)

	job, _, _, _, _, _, trend = m.reportColWidths(10)
	assert.Equal(t, 28, job)
	assert.Equal(t, 8, trend)
}
