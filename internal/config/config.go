package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBPath string

	ShortWorkMinutes int
	ShortRestMinutes int
	LongWorkMinutes  int
	LongRestMinutes  int

	ReloadIntervalMinutes int
	// SessionNotes asks for a short note when a work session ends.
	SessionNotes bool
}

func Default() Config {
	return Config{
		DBPath:                defaultDBPath(),
		ShortWorkMinutes:      25,
		ShortRestMinutes:      5,
		LongWorkMinutes:       50,
		LongRestMinutes:       10,
		ReloadIntervalMinutes: 60,
		SessionNotes:          true,
	}
}

// FromEnv overlays TOMATOD_* variables on base. Values that do not parse or
// fall outside the accepted range are ignored.
func FromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("TOMATOD_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v, ok := getEnvIntIn("TOMATOD_SHORT_WORK_MINUTES", 20, 45); ok {
		cfg.ShortWorkMinutes = v
	}
	if v, ok := getEnvIntIn("TOMATOD_SHORT_REST_MINUTES", 5, 15); ok {
		cfg.ShortRestMinutes = v
	}
	if v, ok := getEnvIntIn("TOMATOD_LONG_WORK_MINUTES", 40, 80); ok {
		cfg.LongWorkMinutes = v
	}
	if v, ok := getEnvIntIn("TOMATOD_LONG_REST_MINUTES", 10, 20); ok {
		cfg.LongRestMinutes = v
	}
	if v, ok := getEnvIntIn("TOMATOD_RELOAD_INTERVAL_MINUTES", 1, 24*60); ok {
		cfg.ReloadIntervalMinutes = v
	}
	if v, ok := getEnvBool("TOMATOD_SESSION_NOTES"); ok {
		cfg.SessionNotes = v
	}
	return cfg
}

// Durations returns the work and rest lengths for a long or short session.
func (c Config) Durations(long bool) (work, rest time.Duration) {
	if long {
		return time.Duration(c.LongWorkMinutes) * time.Minute, time.Duration(c.LongRestMinutes) * time.Minute
	}
	return time.Duration(c.ShortWorkMinutes) * time.Minute, time.Duration(c.ShortRestMinutes) * time.Minute
}

func (c Config) ReloadInterval() time.Duration {
	return time.Duration(c.ReloadIntervalMinutes) * time.Minute
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tomatod.db"
	}
	return filepath.Join(dir, "tomatod", "tomatod.db")
}

func getEnvIntIn(name string, lo, hi int) (int, bool) {
	v, ok := getEnvInt(name)
	if !ok || v < lo || v > hi {
		return 0, false
	}
	return v, true
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
