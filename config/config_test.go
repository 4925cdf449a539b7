package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/niksmo/storefront/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := config.LoadFile(writeConfig(t, `
backend:
  url: http://backend:5000
`))
		require.NoError(t, err)

		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.Equal(t, ":8080", cfg.HTTPServerAddr)
		assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, 3, cfg.Backend.Retries)
		assert.Equal(t, config.CatalogSourceREST, cfg.Catalog.Source)
		assert.Equal(t, 5*time.Minute, cfg.Catalog.RefreshInterval)
		assert.Equal(t, config.StoreMemory, cfg.RecentlyViewed.Store)
		assert.Equal(t, 10, cfg.RecentlyViewed.Limit)
		assert.False(t, cfg.Broker.Enabled())
	})

	t.Run("Full", func(t *testing.T) {
		cfg, err := config.LoadFile(writeConfig(t, `
log_level: debug
http_server_addr: ":9000"
sql_db: postgres://user:secret@db:5432/storefront
backend:
  url: http://backend:5000
  timeout: 3s
  retries: 5
cloudinary:
  cloud_name: demo
  upload_preset: unsigned
catalog:
  source: snapshot
  refresh_interval: 1m
recently_viewed:
  store: kafka
  limit: 8
broker:
  seed_brokers: [kafka-1:9092, kafka-2:9092]
  schema_registry_urls: [http://sr:8081]
  topics:
    catalog_events: catalog
`))
		require.NoError(t, err)

		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, config.CatalogSourceSnapshot, cfg.Catalog.Source)
		assert.Equal(t, time.Minute, cfg.Catalog.RefreshInterval)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.SeedBrokers)
		assert.Equal(t, "catalog", cfg.Broker.Topics.CatalogEvents)
		assert.Equal(t, "storefront-product-views", cfg.Broker.Topics.ProductViews)
		assert.True(t, cfg.Broker.Enabled())
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := config.LoadFile(writeConfig(t, `
backend:
  url: http://backend:5000
  retry: 3
`))
		assert.Error(t, err)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := config.LoadFile(writeConfig(t, `
catalog:
  source: snapshot
recently_viewed:
  store: redis
`))
		require.Error(t, err)
		assert.ErrorContains(t, err, "backend.url")
		assert.ErrorContains(t, err, "sql_db")
		assert.ErrorContains(t, err, "redis.addr")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
