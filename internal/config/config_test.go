package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cbreport.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, "format: parseable-verbose\nindent: 4\nsynchronized_clocks: true\n"))
	require.NoError(t, err)

	assert.Equal(t, "parseable-verbose", cfg.Format)
	assert.Equal(t, 4, cfg.Indent)
	assert.True(t, cfg.SynchronizedClocks)
	assert.Equal(t, 78, cfg.ReportWidth)
	assert.Equal(t, "all", cfg.Namespace)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "format: [oops"))
	assert.ErrorContains(t, err, "parse config")

	_, err = Load(writeConfig(t, "format: xml\n"))
	assert.ErrorContains(t, err, "format")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"indent", func(c *Config) { c.Indent = 0 }},
		{"width", func(c *Config) { c.ReportWidth = -1 }},
		{"parallelism", func(c *Config) { c.Parallelism = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"format", func(c *Config) { c.Format = "yaml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
