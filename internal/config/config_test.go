package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, path, err := Load(LoadOptions{SearchPaths: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "localhost", cfg.BaseURL().Host)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	content := `components_dir: defs
listen: ":9000"
redis:
  addr: localhost:6379
  ttl: 1h
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canvas.yaml"), []byte(content), 0644))

	t.Setenv("CANVAS_LISTEN", ":9100")
	t.Setenv("CANVAS_REDIS_PREFIX", "env:")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log-level", "warn"}))

	cfg, path, err := Load(LoadOptions{SearchPaths: []string{dir}, Flags: fs})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "canvas.yaml"), path)

	assert.Equal(t, "defs", cfg.ComponentsDir, "file")
	assert.Equal(t, ":9100", cfg.Listen, "env beats file")
	assert.Equal(t, "env:", cfg.Redis.Prefix, "env beats default")
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "warn", cfg.Log.Level, "flag beats file")
	assert.Equal(t, "text", cfg.Log.Format, "unchanged flags keep lower sources")
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, _, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"relative base url": func(c *Config) { c.SiteBaseURL = "/site" },
		"negative ttl":      func(c *Config) { c.Redis.TTL = -time.Second },
		"bad level":         func(c *Config) { c.Log.Level = "loud" },
		"bad format":        func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
	assert.NoError(t, DefaultConfig().Validate())
}
