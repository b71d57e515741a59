package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileConfigMissing(t *testing.T) {
	cfg, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, *cfg)
}

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`output: yaml
download-url: https://mirror.test/download
timeout: 30
rate-limit: 0.5
concurrency: 8
`), 0o600))

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, "https://mirror.test/download", cfg.DownloadURL)
	assert.Equal(t, 30, cfg.Timeout)
	assert.InDelta(t, 0.5, cfg.RateLimit, 1e-12)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestLoadFileConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [1, 2]\n"), 0o600))

	_, err := LoadFileConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".neocc", "config.yaml"), ConfigPath())
}

func TestSettingsPrecedence(t *testing.T) {
	writeConfig := func(t *testing.T) string {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output: yaml\nconcurrency: 3\n"), 0o600))
		return path
	}

	tests := []struct {
		name  string
		env   string
		flags []string
		want  string
	}{
		{name: "config file over default", want: "- name: impacts"},
		{name: "env over config file", env: "json", want: `"name": "impacts"`},
		{name: "flag over env", env: "json", flags: []string{"-o", "table"}, want: "TAB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"tabs", "--config", writeConfig(t)}, tt.flags...)
			t.Setenv("HOME", t.TempDir())
			for _, k := range envKeys {
				t.Setenv(k, "")
			}
			t.Setenv("NEOCC_OUTPUT", tt.env)

			cmd := newRootCmd()
			out, errb := new(bytes.Buffer), new(bytes.Buffer)
			cmd.SetOut(out)
			cmd.SetErr(errb)
			cmd.SetArgs(args)
			require.NoError(t, cmd.Execute())
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestSettingsRejectBadEnv(t *testing.T) {
	t.Setenv("NEOCC_CONCURRENCY", "many")
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"tabs", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	require.EqualError(t, cmd.Execute(), `NEOCC_CONCURRENCY must be an integer, got "many"`)
}
