package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	require.Equal(t, "Player", cfg.Username)
	require.Equal(t, "table", cfg.Output)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
	require.Equal(t, "127.0.0.1:8787", cfg.Serve.Addr)
	require.Equal(t, "/v1", cfg.Serve.BasePath)
	require.Equal(t, filepath.Join(os.Getenv("HOME"), ".todoquest.db"), cfg.DB)
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "tq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /tmp/quest.db
username: Ada
output: json
log:
  level: debug
serve:
  base_path: api
`), 0o644))
	t.Setenv("TODOQUEST_USERNAME", "Grace")

	v := viper.New()
	v.Set("config", path)
	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "/tmp/quest.db", cfg.DB)
	require.Equal(t, "Grace", cfg.Username, "env beats file")
	require.Equal(t, "json", cfg.Output)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/api", cfg.Serve.BasePath)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load(v)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		DB:       "x.db",
		Username: "Player",
		Output:   "xml",
		Log:      Log{Level: "loud", Format: "text"},
		Serve:    Serve{Addr: ":0"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "output")
	require.Contains(t, err.Error(), "log.level")

	cfg.Output = "yaml"
	cfg.Log.Level = "warn"
	require.NoError(t, cfg.Validate())
}
