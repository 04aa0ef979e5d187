package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/HaPhanBaoMinh/cbreport/internal/analysis"
	"github.com/HaPhanBaoMinh/cbreport/internal/app"
	"github.com/HaPhanBaoMinh/cbreport/internal/config"
	"github.com/HaPhanBaoMinh/cbreport/internal/dispatch"
	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
	"github.com/HaPhanBaoMinh/cbreport/internal/logger"
	"github.com/HaPhanBaoMinh/cbreport/internal/report"
	"github.com/HaPhanBaoMinh/cbreport/internal/workloads"
)

var (
	configPath   string
	mockWorkers  int
	analysisType string

	cfg config.Config
	log *slog.Logger

	rootCmd = &cobra.Command{
		Use:           "cbreport",
		Short:         "Summarize ClusterBuster run reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	reportCmd = &cobra.Command{
		Use:   "report [file or directory...]",
		Short: "Reduce report documents and print them in the selected format",
		RunE:  runReport,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze [file or directory...]",
		Short: "Compare runs per workload and runtime class",
		RunE:  runAnalyze,
	}

	viewCmd = &cobra.Command{
		Use:   "view [file or directory...]",
		Short: "Browse reports interactively",
		RunE:  runView,
	}

	formatsCmd = &cobra.Command{
		Use:   "formats",
		Short: "List report formats, analysis types and workloads",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fs := make([]string, 0, len(domain.Formats()))
			for _, f := range domain.Formats() {
				fs = append(fs, string(f))
			}
			fmt.Fprintf(out, "formats:   %s\n", strings.Join(fs, " "))
			fmt.Fprintf(out, "analysis:  %s\n", strings.Join(analysis.Types(), " "))
			fmt.Fprintf(out, "workloads: %s\n", strings.Join(workloads.Names(), " "))
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to a yaml configuration file")
	pf.StringP("format", "f", "", "report format (see 'cbreport formats')")
	pf.Int("indent", 0, "per-level indentation of text reports")
	pf.Int("report-width", 0, "fill width of wrapped text")
	pf.String("kubeconfig", "", "path to kubeconfig")
	pf.String("context", "", "kube context")
	pf.Bool("live-pods", false, "resolve pod placement from the cluster when a report has no api_objects")
	pf.String("namespace", "", "namespace searched for client pods with --live-pods")
	pf.Bool("synchronized-clocks", false, "treat worker clocks as synchronized, so sync errors are always reported")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.Int("parallelism", 0, "reports reduced concurrently")
	pf.IntVar(&mockWorkers, "mock", 0, "use a synthetic cpusoaker report with this many workers")

	analyzeCmd.Flags().StringVarP(&analysisType, "type", "t", "", "analysis type: "+strings.Join(analysis.Types(), ", "))

	rootCmd.AddCommand(reportCmd, analyzeCmd, viewCmd, formatsCmd)
}

// setup loads the configuration and lets explicitly set flags override it.
func setup(cmd *cobra.Command) error {
	var err error
	if cfg, err = config.Load(configPath); err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("indent") {
		cfg.Indent, _ = flags.GetInt("indent")
	}
	if flags.Changed("report-width") {
		cfg.ReportWidth, _ = flags.GetInt("report-width")
	}
	if flags.Changed("kubeconfig") {
		cfg.Kubeconfig, _ = flags.GetString("kubeconfig")
	}
	if flags.Changed("context") {
		cfg.Context, _ = flags.GetString("context")
	}
	if flags.Changed("live-pods") {
		cfg.LivePods, _ = flags.GetBool("live-pods")
	}
	if flags.Changed("namespace") {
		cfg.Namespace, _ = flags.GetString("namespace")
	}
	if flags.Changed("synchronized-clocks") {
		cfg.SynchronizedClocks, _ = flags.GetBool("synchronized-clocks")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism, _ = flags.GetInt("parallelism")
	}
	if analysisType != "" {
		cfg.AnalysisType = analysisType
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	log = logger.New("cbreport", level, cmd.ErrOrStderr())
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	opts, err := dispatchOptions()
	if err != nil {
		return err
	}
	sources, err := collectSources(cmd, args)
	if err != nil {
		return err
	}
	answers, err := dispatch.ReportAll(cmd.Context(), sources, opts)
	if err != nil {
		return err
	}
	return dispatch.Print(cmd.OutOrStdout(), answers)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts, err := dispatchOptions()
	if err != nil {
		return err
	}
	opts.Format = domain.FormatJSONSummary
	sources, err := collectSources(cmd, args)
	if err != nil {
		return err
	}
	answers, err := dispatch.ReportAll(cmd.Context(), sources, opts)
	if err != nil {
		return err
	}
	runs := make([]analysis.Run, 0, len(answers))
	for _, a := range answers {
		if a == nil || a.Report == nil {
			continue
		}
		run := analysis.Run{Payload: a.Payload}
		if v, ok := a.Report.Data.Get("summary"); ok {
			run.Summary, _ = v.(*report.Tree)
		}
		runs = append(runs, run)
	}
	result, err := analysis.New(analysis.Collect(runs), cfg.AnalysisType, log).Analyze()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch v := result.(type) {
	case nil:
		return nil
	case string:
		_, err = fmt.Fprintln(out, v)
		return err
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func runView(cmd *cobra.Command, args []string) error {
	opts, err := dispatchOptions()
	if err != nil {
		return err
	}
	sources, err := collectSources(cmd, args)
	if err != nil {
		return err
	}
	entries := make([]app.Entry, 0, len(sources))
	for _, src := range sources {
		p, err := src.Load()
		if err != nil {
			log.Warn("skipping unreadable report", "source", src.Name, "error", err)
			continue
		}
		entries = append(entries, app.Entry{Source: src.Name, Payload: p})
	}
	if len(entries) == 0 {
		return fmt.Errorf("no readable reports")
	}
	// the viewer owns the terminal; keep warnings off it
	opts.Logger = logger.New("cbreport", slog.LevelError, nil)
	m := app.New(entries, renderWith(opts))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}

func renderWith(opts dispatch.Options) app.RenderFunc {
	return func(ctx context.Context, p *domain.Payload, f domain.Format) (*report.Report, error) {
		o := opts
		o.Format = f
		a, err := dispatch.ReportOne(ctx, p, o)
		if err != nil {
			return nil, err
		}
		if a == nil || a.Report == nil {
			return nil, fmt.Errorf("format %s produces no report", f)
		}
		return a.Report, nil
	}
}
