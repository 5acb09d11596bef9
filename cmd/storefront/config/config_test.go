package config

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func envOf(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := values[key]
		return val, ok
	}
}

func newFlagSet() *flag.FlagSet {
	fset := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	return fset
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(newFlagSet(), []string{"-d", "postgres://localhost/smm"}, envOf(nil))

	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.Server.ServerAddress)
	assert.Equal(t, PostgresBackend, cfg.DB.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Reconciler.TickPeriod)
	assert.Equal(t, 4, cfg.Reconciler.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, zapcore.InfoLevel, cfg.Log.Level)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadEnvOverridesFlags(t *testing.T) {
	cfg, err := load(
		newFlagSet(),
		[]string{"-a", "0.0.0.0:9000", "-d", "postgres://flag/smm"},
		envOf(map[string]string{
			"RUN_ADDRESS":           ":8081",
			"DATABASE_URI":          "mongodb://mongo:27017",
			"MONGO_DATABASE":        "shop",
			"RECONCILE_INTERVAL":    "30s",
			"RECONCILE_CONCURRENCY": "8",
			"PROVIDER_TIMEOUT":      "10s",
			"LOG_LEVEL":             "debug",
			"LOG_FILE":              "/var/log/storefront.log",
			"SMTP_HOST":             "smtp.example.com",
			"SMTP_PORT":             "2525",
			"NOTIFY_EMAIL":          "ops@example.com",
			"ADMIN_LOGIN":           "admin",
			"ADMIN_PASSWORD":        "pa55",
		}),
	)

	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Server.ServerAddress)
	assert.Equal(t, MongoBackend, cfg.DB.Backend)
	assert.Equal(t, "shop", cfg.DB.MongoDatabase)
	assert.Equal(t, 30*time.Second, cfg.Reconciler.TickPeriod)
	assert.Equal(t, 8, cfg.Reconciler.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, zapcore.DebugLevel, cfg.Log.Level)
	assert.Equal(t, "/var/log/storefront.log", cfg.Log.File)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "ops@example.com", cfg.NotifyEmail)
	assert.Equal(t, "admin", cfg.Admin.Login)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "no database", args: nil},
		{name: "unknown scheme", args: []string{"-d", "mysql://localhost/smm"}},
		{name: "bad interval", args: []string{"-d", "postgres://x"}, env: map[string]string{"RECONCILE_INTERVAL": "often"}},
		{name: "bad port", args: []string{"-d", "postgres://x"}, env: map[string]string{"SMTP_PORT": "smtp"}},
		{name: "bad level", args: []string{"-d", "postgres://x", "-l", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(newFlagSet(), tt.args, envOf(tt.env))
			assert.Error(t, err)
		})
	}
}
