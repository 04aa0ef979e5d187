package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HaPhanBaoMinh/cbreport/help"
	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
	"github.com/HaPhanBaoMinh/cbreport/internal/logger"
)

// Config holds the reporter's settings. Command-line flags override it.
type Config struct {
	Format             string `yaml:"format"`
	Indent             int    `yaml:"indent"`
	ReportWidth        int    `yaml:"report_width"`
	AnalysisType       string `yaml:"analysis_type"`
	Kubeconfig         string `yaml:"kubeconfig"`
	Context            string `yaml:"context"`
	LivePods           bool   `yaml:"live_pods"`
	Namespace          string `yaml:"namespace"`
	SynchronizedClocks bool   `yaml:"synchronized_clocks"`
	LogLevel           string `yaml:"log_level"`
	Parallelism        int    `yaml:"parallelism"`
}

// DefaultConfig returns the settings used when no configuration file exists.
func DefaultConfig() Config {
	return Config{
		Format:       string(domain.FormatSummary),
		Indent:       2,
		ReportWidth:  78,
		AnalysisType: "ci",
		Kubeconfig:   help.DefaultKubeconfig(),
		Namespace:    "all",
		LogLevel:     "info",
		Parallelism:  4,
	}
}

// Load reads configuration from a yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := domain.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if c.Indent <= 0 {
		return fmt.Errorf("indent must be positive, got %d", c.Indent)
	}
	if c.ReportWidth <= 0 {
		return fmt.Errorf("report_width must be positive, got %d", c.ReportWidth)
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive, got %d", c.Parallelism)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
