// Package dispatch selects the reduction for a payload and prints the answers of
// one or more report sources.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
	"github.com/HaPhanBaoMinh/cbreport/internal/infrastructure/k8s"
	"github.com/HaPhanBaoMinh/cbreport/internal/metrics"
	"github.com/HaPhanBaoMinh/cbreport/internal/report"
	"github.com/HaPhanBaoMinh/cbreport/internal/workloads"
)

// SnapshotLoader supplies pod placement for payloads without api_objects.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, ns string) (*k8s.Snapshot, error)
}

// Options are the knobs shared by every report of a run.
type Options struct {
	Format             domain.Format
	Indent             int
	ReportWidth        int
	SynchronizedClocks bool
	Parallelism        int
	Namespace          string
	Live               SnapshotLoader
	Logger             *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Answer is the outcome of one source: nil for the none format, the payload's
// raw document for the raw format, otherwise a rendered report.
type Answer struct {
	Source  string
	Payload *domain.Payload
	Raw     map[string]any
	Report  *report.Report
}

func (a *Answer) isJSON() bool {
	return a.Raw != nil || (a.Report != nil && a.Report.Data != nil)
}

// ReportOne reduces a single payload.
func ReportOne(ctx context.Context, p *domain.Payload, opts Options) (*Answer, error) {
	log := opts.logger()
	switch opts.Format {
	case domain.FormatNone:
		return nil, nil
	case domain.FormatRaw:
		return &Answer{Payload: p, Raw: p.Raw}, nil
	}
	if p.Metadata.RuntimeClass == "" {
		if rc, ok := p.Metadata.Options.RuntimeClasses["default"]; ok {
			p.SetRuntimeClass(rc)
		}
	}

	workload := p.Metadata.ReportingClass()
	var ext report.Extension = report.BaseExtension{}
	if f, ok := workloads.Lookup(workload); ok {
		ext = f()
	} else {
		log.Warn("no reporter for workload, using generic report", "workload", workload)
	}

	locator, err := podLocator(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	ropts := []report.Option{
		report.WithExtension(ext),
		report.WithPodLocator(locator),
		report.WithLogger(log),
		report.WithSynchronizedClocks(opts.SynchronizedClocks),
	}
	if opts.Indent > 0 {
		ropts = append(ropts, report.WithIndent(opts.Indent))
	}
	if opts.ReportWidth > 0 {
		ropts = append(ropts, report.WithReportWidth(opts.ReportWidth))
	}
	if p.HasMetrics() {
		m := metrics.New(p.Metrics, log)
		log.Debug("decoded metrics", "job", p.Metadata.JobName, "series", m.Series())
		ropts = append(ropts, report.WithMetrics(m))
	}
	r, err := report.NewReporter(p, opts.Format, ropts...)
	if err != nil {
		return nil, err
	}
	rep, err := r.CreateReport()
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", p.Metadata.JobName, err)
	}
	return &Answer{Payload: p, Report: rep}, nil
}

func podLocator(ctx context.Context, p *domain.Payload, opts Options) (domain.PodLocator, error) {
	if len(p.APIObjects) == 0 && opts.Live != nil {
		snap, err := opts.Live.LoadSnapshot(ctx, opts.Namespace)
		if err != nil {
			opts.logger().Warn("cannot load live pods", "error", err)
			return k8s.NewSnapshot(nil), nil
		}
		opts.logger().Debug("loaded live pods", "namespace", opts.Namespace, "pods", len(snap.Pods()))
		return snap, nil
	}
	return k8s.SnapshotFromObjects(p.APIObjects)
}

// Source names a report document to load.
type Source struct {
	Name string
	Load func() (*domain.Payload, error)
}

// FileSource loads a report document from disk.
func FileSource(path string) Source {
	return Source{Name: path, Load: func() (*domain.Payload, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return domain.DecodePayload(b)
	}}
}

// ReaderSource loads a report document from r, typically stdin.
func ReaderSource(name string, r io.Reader) Source {
	return Source{Name: name, Load: func() (*domain.Payload, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return domain.DecodePayload(b)
	}}
}

// ReportAll reduces every source concurrently. Answers keep source order; a
// source that cannot be reduced aborts the run.
func ReportAll(ctx context.Context, sources []Source, opts Options) ([]*Answer, error) {
	answers := make([]*Answer, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			p, err := src.Load()
			if err != nil {
				return fmt.Errorf("load %s: %w", src.Name, err)
			}
			a, err := ReportOne(ctx, p, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name, err)
			}
			if a != nil {
				a.Source = src.Name
			}
			answers[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return answers, nil
}

// Print writes the answers: one JSON array when the answers are structured,
// otherwise the text reports separated by a blank line.
func Print(w io.Writer, answers []*Answer) error {
	var kept []*Answer
	for _, a := range answers {
		if a != nil {
			kept = append(kept, a)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if kept[0].isJSON() {
		docs := make([]any, 0, len(kept))
		for _, a := range kept {
			if a.Raw != nil {
				docs = append(docs, a.Raw)
			} else {
				docs = append(docs, a.Report.Data)
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
	texts := make([]string, 0, len(kept))
	for _, a := range kept {
		texts = append(texts, strings.TrimRight(a.Report.Text, "\n"))
	}
	_, err := fmt.Fprintln(w, strings.Join(texts, "\n\n"))
	return err
}
