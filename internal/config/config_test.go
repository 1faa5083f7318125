package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
    t.Helper()
    t.Setenv("APP_ENV", "test")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
    setRequired(t)

    cfg, err := Load()
    require.NoError(t, err)

    assert.Equal(t, "test", cfg.Env)
    assert.Equal(t, "info", cfg.LogLevel)
    assert.Equal(t, 5*time.Minute, cfg.HoldTTL())
    assert.Equal(t, 15*time.Minute, cfg.MaxHoldTTL())
    assert.Equal(t, 10*time.Second, cfg.ReaperInterval())
    assert.Equal(t, 2*time.Minute, cfg.ExpiringSoon())
    assert.Equal(t, "memory", cfg.Inventory.Backend)
    assert.Equal(t, 64, cfg.Inventory.Shards)
    assert.Equal(t, "fixture", cfg.CatalogSource)
    assert.Equal(t, []string{"log"}, cfg.AuditSinks)
    assert.False(t, cfg.DatabaseEnabled())
    assert.Equal(t, "localhost:6379", cfg.Redis.Address())

    assert.True(t, cfg.RateLimit.Enabled)
    assert.Equal(t, 60, cfg.RateLimit.Capacity)
    assert.Equal(t, 10*time.Minute, cfg.RateLimit.TTL)

    assert.True(t, cfg.Cache.Enabled)
    assert.Equal(t, map[string]bool{"GET": true}, cfg.Cache.Methods)
    assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestLoadOverrides(t *testing.T) {
    setRequired(t)
    t.Setenv("DEFAULT_TTL_SECONDS", "120")
    t.Setenv("MAX_TTL_SECONDS", "600")
    t.Setenv("INVENTORY_BACKEND", "Redis")
    t.Setenv("AUDIT_SINKS", "log, SQL,kafka")
    t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
    t.Setenv("REDIS_HOST", "cache")
    t.Setenv("REDIS_PORT", "6380")
    t.Setenv("RATE_LIMIT_BURST", "5")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
    t.Setenv("CACHE_METHODS", "get,head")

    cfg, err := Load()
    require.NoError(t, err)

    assert.Equal(t, 2*time.Minute, cfg.HoldTTL())
    assert.Equal(t, 10*time.Minute, cfg.MaxHoldTTL())
    assert.Equal(t, "redis", cfg.Inventory.Backend)
    assert.Equal(t, []string{"log", "sql", "kafka"}, cfg.AuditSinks)
    assert.True(t, cfg.DatabaseEnabled())
    assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
    assert.Equal(t, "cache:6380", cfg.Redis.Address())
    assert.Equal(t, 5, cfg.RateLimit.Capacity)
    assert.Equal(t, 1, cfg.RateLimit.RefillTokens)
    assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Cache.Methods)
}

func TestLoadMissingRequired(t *testing.T) {
    t.Setenv("APP_ENV", "")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("JWT_SECRET", "secret")
    os.Unsetenv("APP_ENV")

    _, err := Load()
    assert.Error(t, err)
}

func TestLoadReadsEnvFile(t *testing.T) {
    dir := t.TempDir()
    path := filepath.Join(dir, "test.env")
    require.NoError(t, os.WriteFile(path, []byte("APP_ENV=dev\nAPP_PORT=9090\nJWT_SECRET=from-file\nREAPER_INTERVAL_SECONDS=3\n"), 0o600))
    for _, k := range []string{"APP_ENV", "APP_PORT", "JWT_SECRET", "REAPER_INTERVAL_SECONDS"} {
        t.Setenv(k, "")
        os.Unsetenv(k)
    }

    cfg, err := Load(path)
    require.NoError(t, err)
    assert.Equal(t, "9090", cfg.Port)
    assert.Equal(t, "from-file", cfg.JWTSecret)
    assert.Equal(t, 3*time.Second, cfg.ReaperInterval())
}

func TestValidate(t *testing.T) {
    valid := func() *Config {
        return &Config{
            Hold:          Hold{DefaultTTLSeconds: 300, MaxTTLSeconds: 900, ReaperIntervalSeconds: 10, ExpiringSoonSeconds: 120},
            Inventory:     Inventory{Backend: "memory"},
            CatalogSource: "fixture",
            AuditSinks:    []string{"log"},
        }
    }
    require.NoError(t, valid().Validate())

    cases := map[string]func(*Config){
        "zero ttl":        func(c *Config) { c.Hold.DefaultTTLSeconds = 0 },
        "max below ttl":   func(c *Config) { c.Hold.MaxTTLSeconds = 60 },
        "zero reaper":     func(c *Config) { c.Hold.ReaperIntervalSeconds = 0 },
        "bad backend":     func(c *Config) { c.Inventory.Backend = "etcd" },
        "bad catalog":     func(c *Config) { c.CatalogSource = "csv" },
        "bad sink":        func(c *Config) { c.AuditSinks = []string{"log", "s3"} },
        "bad publisher":   func(c *Config) { c.BookingPublisher = "nats" },
        "kafka no broker": func(c *Config) { c.BookingPublisher = "kafka" },
    }
    for name, mutate := range cases {
        t.Run(name, func(t *testing.T) {
            c := valid()
            mutate(c)
            assert.Error(t, c.Validate())
        })
    }
}
