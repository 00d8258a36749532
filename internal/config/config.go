package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string

	// Paths
	DataDir      string
	DBConnection string
	SocketPath   string
	PrefsPath    string

	// Audio
	PlayerCmd            string
	PlayerArgs           []string
	MinRecordingDuration time.Duration
	MaxRecordingDuration time.Duration

	// Storage quota
	MaxRecordings   int
	MaxStorageBytes int64

	// Platform capabilities. Denials degrade scheduling, they never block
	// a save.
	ExactAlarmsAllowed   bool
	NotificationsEnabled bool
	BatteryUnrestricted  bool

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	dataDir := envString("DATA_DIR", "./data")

	cfg := &Config{
		AppName: envString("APP_NAME", "Reveille"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'

		DataDir:      dataDir,
		DBConnection: envString("DB_CONNECTION", filepath.Join(dataDir, "reveille.db")+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),
		SocketPath:   envString("SOCKET_PATH", filepath.Join(dataDir, "reveilled.sock")),
		PrefsPath:    envString("PREFS_PATH", filepath.Join(dataDir, "prefs")),

		PlayerCmd:            envString("PLAYER_CMD", "aplay"),
		PlayerArgs:           nil,
		MinRecordingDuration: envDuration("MIN_RECORDING_DURATION", 3*time.Second),
		MaxRecordingDuration: envDuration("MAX_RECORDING_DURATION", 180*time.Second),

		MaxRecordings:   envInt("MAX_RECORDINGS", 20),
		MaxStorageBytes: envInt64("MAX_STORAGE_BYTES", 100<<20),

		ExactAlarmsAllowed:   envBool("EXACT_ALARMS_ALLOWED", true),
		NotificationsEnabled: envBool("NOTIFICATIONS_ENABLED", true),
		BatteryUnrestricted:  envBool("BATTERY_UNRESTRICTED", true),

		SentryDSN: envString("SENTRY_DSN", ""),
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
