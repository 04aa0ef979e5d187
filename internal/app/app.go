package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
	"github.com/HaPhanBaoMinh/cbreport/internal/report"
	"github.com/HaPhanBaoMinh/cbreport/internal/ui/styles"
	"github.com/HaPhanBaoMinh/cbreport/internal/ui/widgets"
)

// RenderFunc reduces a payload in the given format.
type RenderFunc func(ctx context.Context, p *domain.Payload, f domain.Format) (*report.Report, error)

// Entry is one loaded report source.
type Entry struct {
	Source  string
	Payload *domain.Payload
}

// jobStats is what the table shows for an entry, taken from its json report.
type jobStats struct {
	clients    int
	status     string
	iterRate   float64
	cpuUtil    float64
	iterations []float64 // per-worker iterations/sec in worker order
}

type View int

const (
	ViewSummary View = iota
	ViewVerbose
)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	render RenderFunc
	mu     *sync.Mutex

	entries []Entry
	stats   []jobStats
	order   []int
	sortBy  string // "job"|"rate"

	view     View
	table    table.Model
	reportVP viewport.Model
	infoOpen bool
	shown    int

	width, height int
	err           error
}

func New(entries []Entry, render RenderFunc) Model {
	ctx, cancel := context.WithCancel(context.Background())

	t := table.New(table.WithStyles(styles.Table()))
	t.SetHeight(8)
	t.SetWidth(100)

	m := Model{
		ctx:      ctx,
		cancel:   cancel,
		render:   render,
		mu:       &sync.Mutex{},
		entries:  entries,
		stats:    make([]jobStats, len(entries)),
		sortBy:   "job",
		view:     ViewSummary,
		table:    t,
		reportVP: viewport.New(100, 20),
		shown:    -1,
	}
	m.order = make([]int, len(entries))
	for i := range m.order {
		m.order[i] = i
	}
	return m
}

type statsMsg []jobStats
type reportMsg struct {
	entry int
	view  View
	text  string
}
type errMsg struct{ error }

func (m Model) Init() tea.Cmd {
	return m.loadStats()
}

// loadStats reduces every entry in the json format to fill the table.
func (m Model) loadStats() tea.Cmd {
	return func() tea.Msg {
		m.mu.Lock()
		defer m.mu.Unlock()
		out := make([]jobStats, len(m.entries))
		for i, e := range m.entries {
			rep, err := m.render(m.ctx, e.Payload, domain.FormatJSON)
			if err != nil {
				return errMsg{fmt.Errorf("%s: %w", e.Source, err)}
			}
			out[i] = statsFrom(rep)
		}
		return statsMsg(out)
	}
}

func statsFrom(rep *report.Report) jobStats {
	st := jobStats{status: "FAILED"}
	if rep == nil || rep.Data == nil {
		return st
	}
	if v, ok := rep.Data.Get("summary"); ok {
		if s, ok := v.(*report.Tree); ok {
			n, _ := s.Number("total_instances")
			st.clients = int(n)
			st.iterRate, _ = s.Number("work_iterations_sec")
			st.cpuUtil, _ = s.Number("cpu_utilization")
			if st.clients > 0 {
				st.status = "OK"
			}
		}
	}
	if v, ok := rep.Data.Get("rows"); ok {
		if rows, ok := v.([]*report.Tree); ok {
			for _, row := range rows {
				work, _ := row.Number("work_iterations")
				elapsed, _ := row.Number("data_elapsed_time")
				st.iterations = append(st.iterations, report.DivOrZero(work, elapsed))
			}
		}
	}
	return st
}

// loadReport renders the text report of the selected entry.
func (m Model) loadReport(entry int, view View) tea.Cmd {
	format := domain.FormatSummary
	if view == ViewVerbose {
		format = domain.FormatVerbose
	}
	return func() tea.Msg {
		m.mu.Lock()
		defer m.mu.Unlock()
		rep, err := m.render(m.ctx, m.entries[entry].Payload, format)
		if err != nil {
			return errMsg{err}
		}
		return reportMsg{entry: entry, view: view, text: rep.Text}
	}
}

func (m Model) selected() (int, bool) {
	if len(m.order) == 0 {
		return 0, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.order) {
		i = 0
	}
	return m.order[i], true
}

// refreshReport asks for the selected entry's text unless it is already shown.
func (m *Model) refreshReport() tea.Cmd {
	idx, ok := m.selected()
	if !ok || idx == m.shown {
		return nil
	}
	m.shown = idx
	return m.loadReport(idx, m.view)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

		headerH := lipgloss.Height(styles.Header.Render("x"))
		footerH := lipgloss.Height(styles.Footer.Render("x"))
		base := m.height - headerH - footerH - 4
		if base < 12 {
			base = 12
		}
		tableH := clamp(len(m.entries)+2, 4, base/3)
		if m.infoOpen {
			tableH = clamp(tableH, 4, base/4)
		}
		m.table.SetHeight(tableH)
		m.table.SetWidth(m.width - 4)
		m.reportVP.Width = m.width - 4
		m.reportVP.Height = base - tableH
		if m.infoOpen {
			m.reportVP.Height -= 7
		}
		m.rebuildTable()
		return m, nil

	case statsMsg:
		m.stats = msg
		m.sortEntries()
		m.rebuildTable()
		if len(m.order) > 0 {
			m.table.SetCursor(0)
		}
		return m, m.refreshReport()

	case reportMsg:
		if msg.entry == m.shown && msg.view == m.view {
			m.reportVP.SetContent(msg.text)
			m.reportVP.GotoTop()
		}
		return m, nil

	case errMsg:
		m.err = msg.error
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if msg.String() == "esc" && m.infoOpen {
				m.infoOpen = false
				return m, m.resize()
			}
			m.cancel()
			return m, tea.Quit

		case "tab":
			if m.view == ViewSummary {
				m.view = ViewVerbose
			} else {
				m.view = ViewSummary
			}
			m.shown = -1
			return m, m.refreshReport()

		case "i":
			m.infoOpen = !m.infoOpen
			return m, m.resize()

		case "s":
			if m.sortBy == "job" {
				m.sortBy = "rate"
			} else {
				m.sortBy = "job"
			}
			m.sortEntries()
			m.rebuildTable()
			return m, m.refreshReport()

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.reportVP, cmd = m.reportVP.Update(msg)
			return m, cmd

		case "up", "k", "down", "j":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, tea.Batch(cmd, m.refreshReport())
		}
	}

	var cmd tea.Cmd
	m.reportVP, cmd = m.reportVP.Update(msg)
	return m, cmd
}

// resize triggers a synthetic resize to recalc heights.
func (m Model) resize() tea.Cmd {
	return func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} }
}

func (m *Model) sortEntries() {
	sort.SliceStable(m.order, func(i, j int) bool {
		a, b := m.order[i], m.order[j]
		if m.sortBy == "rate" && a < len(m.stats) && b < len(m.stats) {
			return m.stats[a].iterRate > m.stats[b].iterRate
		}
		return m.entries[a].Payload.Metadata.JobName < m.entries[b].Payload.Metadata.JobName
	})
	m.shown = -1
}

func (m *Model) rebuildTable() {
	wJob, wWorkload, wRuntime, wClients, wStatus, wRate, wTrend := m.reportColWidths(m.table.Width())
	cols := []table.Column{
		{Title: "JOB", Width: wJob},
		{Title: "WORKLOAD", Width: wWorkload},
		{Title: "RUNTIME", Width: wRuntime},
		{Title: "CLIENTS", Width: wClients},
		{Title: "STATUS", Width: wStatus},
		{Title: "IT/SEC", Width: wRate},
		{Title: "Workers", Width: wTrend},
	}
	var maxRate float64
	for _, st := range m.stats {
		for _, v := range st.iterations {
			maxRate = max(maxRate, v)
		}
	}
	var rows []table.Row
	for _, idx := range m.order {
		md := m.entries[idx].Payload.Metadata
		st := m.stats[idx]
		rows = append(rows, table.Row{
			ansi.Truncate(md.JobName, wJob, "…"),
			md.ReportingClass(),
			md.RuntimeClass,
			fmt.Sprintf("%d", st.clients),
			st.status,
			report.FormatFixed(st.iterRate, 0),
			widgets.Spark8(normalize(st.iterations, maxRate), wTrend),
		})
	}
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.Focus()
}

func normalize(vals []float64, top float64) []float64 {
	if top <= 0 {
		return vals
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v / top
	}
	return out
}

func (m Model) View() string {
	mode := map[View]string{ViewSummary: "summary", ViewVerbose: "verbose"}[m.view]
	head := styles.Header.Render(
		fmt.Sprintf("cbreport  │ reports: %d  view: %s  sort: %s  (Tab summary/verbose)  [i]info [s]sort [q]quit",
			len(m.entries), mode, m.sortBy),
	)
	tabs := []string{styles.Tab.Render("Summary"), styles.Tab.Render("Verbose")}
	tabs[m.view] = styles.TabActive.Render(map[View]string{ViewSummary: "Summary", ViewVerbose: "Verbose"}[m.view])
	body := lipgloss.NewStyle().Padding(0, 1).Render(m.table.View())

	info := ""
	if m.infoOpen {
		info = styles.Box.Width(m.width - 2).Render(m.renderInfo())
	}
	pane := styles.Box.Width(m.width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, strings.Join(tabs, "  "), m.reportVP.View()))

	footer := styles.Footer.Render("↑/↓ select • PgUp/PgDn scroll • [Tab] summary/verbose • [i] info • [s] sort • [q] quit")
	if m.err != nil {
		footer = styles.Danger.Render("error: "+m.err.Error()) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, body, info, pane, footer)
}

func (m Model) renderInfo() string {
	idx, ok := m.selected()
	if !ok {
		return styles.Faint.Render("No reports")
	}
	md := m.entries[idx].Payload.Metadata
	st := m.stats[idx]
	statusStyle := styles.Good
	if st.status != "OK" {
		statusStyle = styles.Danger
	}
	var lo, hi float64
	for i, v := range st.iterations {
		if i == 0 || v < lo {
			lo = v
		}
		hi = max(hi, v)
	}
	spread := styles.Good
	if hi > 0 && (hi-lo)/hi > 0.1 {
		spread = styles.Warn
	}
	return fmt.Sprintf(
		`Job: %s  uuid: %s  host: %s  status: %s
Kubernetes: %s  runtime: %s

CPU utilization: %5.1f%% %s
Workers it/sec: %s  min %s  max %s`,
		styles.Title.Render(md.JobName), md.RunUUID, md.RunHost, statusStyle.Render(st.status),
		md.KubernetesVersion.ServerVersion.GitVersion, md.RuntimeClass,
		st.cpuUtil*100, widgets.Bar(st.cpuUtil, 20),
		widgets.Spark8(normalize(st.iterations, hi), 30),
		spread.Render(report.FormatFixed(lo, 0)), spread.Render(report.FormatFixed(hi, 0)),
	)
}
