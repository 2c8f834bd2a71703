package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gramminer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
output_directory: ./run
binary_file: ./sut
oracle:
  command: ["./oracle-worker"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "./run", cfg.OutputDirectory)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, uint64(1), cfg.RNGSeed)
	require.Equal(t, 50, cfg.MaxProcSamples)
	require.Equal(t, 100, cfg.MaxChecks)
	require.Equal(t, 10, cfg.FuzzRange)
	require.True(t, cfg.OriginalMimid)
	require.Equal(t, "subprocess", cfg.Oracle.Backend)
	require.Equal(t, 5*time.Second, cfg.Oracle.RequestTimeout)
	require.Equal(t, 3, cfg.Oracle.MaxRestarts)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
output_directory: ./run
binary_file: ./sut
log_level: debug
rng_seed: 42
fuzz_range: 3
oracle:
  backend: subprocess
  command: ["./oracle-worker"]
  request_timeout: 1s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, uint64(42), cfg.RNGSeed)
	require.Equal(t, 3, cfg.FuzzRange)
	require.Equal(t, time.Second, cfg.Oracle.RequestTimeout)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		caption string
		body    string
	}{
		{"missing output_directory", "binary_file: ./sut\noracle:\n  command: [\"x\"]\n"},
		{"missing binary_file", "output_directory: ./run\noracle:\n  command: [\"x\"]\n"},
		{"missing oracle command", "output_directory: ./run\nbinary_file: ./sut\n"},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			path := writeTempConfig(t, tt.body)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		logLevel string
	}{
		{"debug"}, {"warn"}, {"error"}, {"info"}, {"unknown"},
	}
	for _, tt := range tests {
		c := &Config{LogLevel: tt.logLevel}
		// Level must not panic for any input, including an unknown name.
		_ = c.Level()
	}
}
