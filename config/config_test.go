package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":9090"
data:
  file: "testdata/promotions.json"
  refresh_interval: 10m
search:
  page_size: 8
session:
  timeout: 5m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "testdata/promotions.json", cfg.Data.File)
	assert.Equal(t, 10*time.Minute, cfg.Data.RefreshInterval)
	assert.Equal(t, 8, cfg.Search.PageSize)
	assert.Equal(t, 5*time.Minute, cfg.Session.Timeout)

	// untouched keys keep their defaults
	assert.Equal(t, DefaultCatalogueLimit, cfg.Search.CatalogueLimit)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "https://api.vrcomseven.com/v1/promotions", cfg.Upstream.PromotionsURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":9090"
`)
	t.Setenv("PROMO_SERVER_ADDRESS", ":7070")
	t.Setenv("PROMO_SEARCH_PAGE_SIZE", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Search.PageSize)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
session:
  backend: "memcached"
search:
  fuzzy_threshold: 1.5
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.backend")
	assert.Contains(t, err.Error(), "fuzzy_threshold")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{
			name:   "memory backend with file source",
			modify: func(c *Config) {},
		},
		{
			name: "redis backend without address",
			modify: func(c *Config) {
				c.Session.Backend = "redis"
				c.Redis.Addr = ""
			},
			wantErr: "redis.addr",
		},
		{
			name:    "unknown data source",
			modify:  func(c *Config) { c.Data.Source = "ftp" },
			wantErr: "data.source",
		},
		{
			name:    "line secret without token",
			modify:  func(c *Config) { c.LINE.ChannelSecret = "secret" },
			wantErr: "line.channel_secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Data: DataConfig{File: "promotions.json"}, Redis: RedisConfig{Addr: "localhost:6379"}}
			c.ApplyDefaults()
			tt.modify(c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLINEConfig_Enabled(t *testing.T) {
	assert.False(t, LINEConfig{}.Enabled())
	assert.False(t, LINEConfig{ChannelSecret: "s"}.Enabled())
	assert.True(t, LINEConfig{ChannelSecret: "s", ChannelAccessToken: "t"}.Enabled())
}
