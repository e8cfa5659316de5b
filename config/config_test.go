package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/mecab-bridge/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mecab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Setenv(config.EnvPath, "")
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dictionary:
  dir: /usr/share/mecab/dic/ipadic
  userdic: /etc/mecab/user.csv
  args: -a -N 2
server:
  addr: 127.0.0.1:9000
cache:
  backend: redis
  ttl: 90s
  redis:
    addr: redis:6379
    db: 2
log:
  level: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, config.Default().Server.MaxBodyBytes, cfg.Server.MaxBodyBytes, "unset keys keep defaults")
	assert.Equal(t, config.CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "mecab:parse:", cfg.Cache.Redis.Prefix)
	assert.Equal(t, []string{
		"mecab", "-d", "/usr/share/mecab/dic/ipadic", "-u", "/etc/mecab/user.csv", "-a", "-N", "2",
	}, cfg.Dictionary.Argv())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(config.EnvPath, writeConfig(t, "server:\n  addr: :7000\n"))
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "server: [", "parse config"},
		{"backend", "cache:\n  backend: memcached\n", "unknown cache backend"},
		{"redis addr", "cache:\n  backend: redis\n  redis:\n    addr: \"\"\n", "cache.redis.addr"},
		{"nbest", "server:\n  max_nbest: 0\n", "max_nbest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogBuild(t *testing.T) {
	l, err := config.LogConfig{Level: "warn"}.Build()
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))
	assert.True(t, l.Core().Enabled(1))

	_, err = config.LogConfig{Level: "loud"}.Build()
	assert.Error(t, err)
}
