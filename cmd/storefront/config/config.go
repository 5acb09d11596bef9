package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"smm-market/internal/storefront"
	"smm-market/internal/storefront/notify"
	"smm-market/internal/storefront/reconciler"
)

const (
	serverAddressFlag         = "a"
	serverAddressEnv          = "RUN_ADDRESS"
	serverAddressDefault      = "localhost:8080"
	dbConnectionStringFlag    = "d"
	dbConnectionStringEnv     = "DATABASE_URI"
	dbConnectionStringDefault = ""
	mongoDatabaseEnv          = "MONGO_DATABASE"
	reconcileIntervalFlag     = "i"
	reconcileIntervalEnv      = "RECONCILE_INTERVAL"
	reconcileConcurrencyEnv   = "RECONCILE_CONCURRENCY"
	providerTimeoutEnv        = "PROVIDER_TIMEOUT"
	adminLoginEnv             = "ADMIN_LOGIN"
	adminPasswordEnv          = "ADMIN_PASSWORD"
	jwtSecretEnv              = "JWT_SECRET"
	logLevelFlag              = "l"
	logLevelEnv               = "LOG_LEVEL"
	logFileEnv                = "LOG_FILE"
	smtpHostEnv               = "SMTP_HOST"
	smtpPortEnv               = "SMTP_PORT"
	smtpUsernameEnv           = "SMTP_USERNAME"
	smtpPasswordEnv           = "SMTP_PASSWORD"
	smtpFromEnv               = "SMTP_FROM"
	notifyEmailEnv            = "NOTIFY_EMAIL"
	shutdownTimeoutEnv        = "SHUTDOWN_TIMEOUT"

	defaultProviderTimeout = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultSMTPPort        = 587
	defaultEnvFile         = ".env"
)

type Backend string

const (
	PostgresBackend Backend = "postgres"
	MongoBackend    Backend = "mongo"
)

type Config struct {
	Server          storefront.Config
	JWTConfig       JWTConfig
	Admin           AdminConfig
	DB              DBConfig
	Reconciler      reconciler.Config
	ProviderTimeout time.Duration
	Log             LogConfig
	SMTP            notify.SMTPConfig
	NotifyEmail     string
	ShutdownTimeout time.Duration
}

type JWTConfig struct {
	Algorithm      string
	Secret         string
	ExpirationTime time.Duration
}

type AdminConfig struct {
	Login    string
	Password string
}

type DBConfig struct {
	Backend          Backend
	ConnectionString string
	MongoDatabase    string
}

type LogConfig struct {
	Level zapcore.Level
	File  string
}

// Load reads flags from the command line, then lets the environment and an
// optional .env file override them.
func Load() (*Config, error) {
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", defaultEnvFile, err)
	}
	return load(flag.CommandLine, os.Args[1:], os.LookupEnv)
}

func load(fset *flag.FlagSet, args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	serverAddress := fset.String(serverAddressFlag, serverAddressDefault, "Server address host:port")
	dbConnectionString := fset.String(
		dbConnectionStringFlag,
		dbConnectionStringDefault,
		"PostgreSQL or MongoDB connection string",
	)
	reconcileInterval := fset.Duration(reconcileIntervalFlag, reconciler.DefaultTickPeriod, "Reconciliation interval")
	logLevel := fset.String(logLevelFlag, zapcore.InfoLevel.String(), "Log level")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	env := envReader{lookup: lookupEnv}
	env.string(serverAddressEnv, serverAddress)
	env.string(dbConnectionStringEnv, dbConnectionString)
	env.duration(reconcileIntervalEnv, reconcileInterval)
	env.string(logLevelEnv, logLevel)

	concurrency := reconciler.DefaultConcurrency
	env.int(reconcileConcurrencyEnv, &concurrency)
	providerTimeout := defaultProviderTimeout
	env.duration(providerTimeoutEnv, &providerTimeout)
	shutdownTimeout := defaultShutdownTimeout
	env.duration(shutdownTimeoutEnv, &shutdownTimeout)

	var mongoDatabase, adminLogin, adminPassword, logFile, notifyEmail string
	jwtSecret := "secret"
	env.string(mongoDatabaseEnv, &mongoDatabase)
	env.string(adminLoginEnv, &adminLogin)
	env.string(adminPasswordEnv, &adminPassword)
	env.string(jwtSecretEnv, &jwtSecret)
	env.string(logFileEnv, &logFile)
	env.string(notifyEmailEnv, &notifyEmail)

	smtp := notify.SMTPConfig{Port: defaultSMTPPort}
	env.string(smtpHostEnv, &smtp.Host)
	env.int(smtpPortEnv, &smtp.Port)
	env.string(smtpUsernameEnv, &smtp.Username)
	env.string(smtpPasswordEnv, &smtp.Password)
	env.string(smtpFromEnv, &smtp.From)

	if env.err != nil {
		return nil, env.err
	}

	level, err := zapcore.ParseLevel(*logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}
	backend, err := backendOf(*dbConnectionString)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: storefront.Config{
			ServerAddress:   *serverAddress,
			ShutdownTimeout: shutdownTimeout,
		},
		JWTConfig: JWTConfig{
			Algorithm:      "HS256",
			Secret:         jwtSecret,
			ExpirationTime: time.Hour,
		},
		Admin: AdminConfig{
			Login:    adminLogin,
			Password: adminPassword,
		},
		DB: DBConfig{
			Backend:          backend,
			ConnectionString: *dbConnectionString,
			MongoDatabase:    mongoDatabase,
		},
		Reconciler: reconciler.Config{
			TickPeriod:  *reconcileInterval,
			Concurrency: concurrency,
		},
		ProviderTimeout: providerTimeout,
		Log: LogConfig{
			Level: level,
			File:  logFile,
		},
		SMTP:            smtp,
		NotifyEmail:     notifyEmail,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func backendOf(dsn string) (Backend, error) {
	switch {
	case dsn == "":
		return "", errors.New("database connection string is required")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return PostgresBackend, nil
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return MongoBackend, nil
	}
	return "", fmt.Errorf("unsupported database connection string scheme: %q", strings.SplitN(dsn, ":", 2)[0])
}

// envReader remembers the first malformed value so Load can report it once.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) string(key string, dest *string) {
	if val, ok := e.lookup(key); ok {
		*dest = val
	}
}

func (e *envReader) int(key string, dest *int) {
	val, ok := e.lookup(key)
	if !ok || e.err != nil {
		return
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
		return
	}
	*dest = parsed
}

func (e *envReader) duration(key string, dest *time.Duration) {
	val, ok := e.lookup(key)
	if !ok || e.err != nil {
		return
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
		return
	}
	*dest = parsed
}
