package report

import (
	"log/slog"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

// Option configures a Reporter.
type Option func(*config)

type config struct {
	extension    Extension
	locator      domain.PodLocator
	metrics      domain.MetricsSource
	logger       *slog.Logger
	indent       int
	reportWidth  int
	syncedClocks bool
}

// WithExtension installs the workload-specific reduction steps.
func WithExtension(ext Extension) Option {
	return func(c *config) { c.extension = ext }
}

// WithPodLocator resolves the node each row's pod ran on.
func WithPodLocator(l domain.PodLocator) Option {
	return func(c *config) { c.locator = l }
}

// WithMetrics attaches the metrics collaborator.
func WithMetrics(m domain.MetricsSource) Option {
	return func(c *config) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithIndent sets the per-depth indentation of text reports.
func WithIndent(n int) Option {
	return func(c *config) { c.indent = n }
}

// WithReportWidth sets the fill width of wrapped text.
func WithReportWidth(n int) Option {
	return func(c *config) { c.reportWidth = n }
}

// WithSynchronizedClocks declares that worker nodes share a clock, so sync error
// estimates are meaningful even across nodes.
func WithSynchronizedClocks(b bool) Option {
	return func(c *config) { c.syncedClocks = b }
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		indent:      2,
		reportWidth: 78,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.locator == nil {
		cfg.locator = noLocator{}
	}
	if cfg.extension == nil {
		cfg.extension = BaseExtension{}
	}
	return cfg
}

type noLocator struct{}

func (noLocator) NodeFor(string, string) (string, bool) { return "", false }
func (noLocator) ClientsOnSameNode() bool { return true }
