package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cms-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "cms", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, LockBackendMemory, cfg.Ordering.LockBackend)
	assert.Equal(t, 10*time.Second, cfg.Ordering.LockTTL)
	assert.Equal(t, 500, cfg.Ordering.MaxBatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "If-Match")
	assert.False(t, cfg.JWT.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CMS_APP_PORT", "9090")
	t.Setenv("CMS_DATABASE_DRIVER", "sqlite")
	t.Setenv("CMS_ORDERING_LOCK_BACKEND", "redis")
	t.Setenv("CMS_ORDERING_MAX_BATCH_SIZE", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "cms.db", cfg.Database.Path)
	assert.Equal(t, "cms.db", cfg.Database.DSN())
	assert.Equal(t, LockBackendRedis, cfg.Ordering.LockBackend)
	assert.Equal(t, 50, cfg.Ordering.MaxBatchSize)
}

func TestLoadFile_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cms.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
name = "cms-test"

[ordering]
lock_ttl = "30s"

[http]
cors_allow_origins = ["http://localhost:3000"]
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "cms-test", cfg.App.Name)
	assert.Equal(t, 30*time.Second, cfg.Ordering.LockTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSAllowOrigins)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 100 }, "max_idle_conns"},
		{"unknown lock backend", func(c *Config) { c.Ordering.LockBackend = "etcd" }, "ordering.lock_backend"},
		{"short lock ttl", func(c *Config) { c.Ordering.LockTTL = time.Millisecond }, "lock_ttl"},
		{"jwt without secret", func(c *Config) { c.JWT.Enabled = true }, "jwt.secret"},
		{"sampling out of range", func(c *Config) { c.Telemetry.SamplingRatio = 2 }, "sampling_ratio"},
		{"production sqlite", func(c *Config) {
			c.App.Env = "production"
			c.Database.Driver = DriverSQLite
		}, "production"},
		{"production wildcard cors", func(c *Config) {
			c.App.Env = "production"
			c.Database.Password = "secret"
			c.Database.SSLMode = "require"
			c.JWT.Enabled = true
			c.JWT.Secret = "0123456789abcdef0123456789abcdef"
			c.HTTP.CORSAllowOrigins = []string{"*"}
		}, "cors_allow_origins"},
	}

	require.NoError(t, valid().validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     5433,
		User:     "cms",
		Password: "p@ss word",
		DBName:   "cms",
		SSLMode:  "require",
	}

	assert.Equal(t, "postgres://cms:p%40ss%20word@db:5433/cms?sslmode=require", d.DSN())
}
