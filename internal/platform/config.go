package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds process settings. Values come from defaults, then an optional
// TOML file named by SLIDESHORTS_CONFIG, then environment variables.
type Config struct {
	Port            string  `toml:"port"`
	StoreDir        string  `toml:"store_dir"`
	FontPath        string  `toml:"font_path"`
	FontSize        float64 `toml:"font_size"`
	FFmpegPath      string  `toml:"ffmpeg_path"`
	RedisURL        string  `toml:"redis_url"`
	PublicBaseURL   string  `toml:"public_base_url"`
	FrontendURL     string  `toml:"frontend_url"`
	LogLevel        string  `toml:"log_level"`
	JanitorSchedule string  `toml:"janitor_schedule"`
	// Retention is how long finished videos are kept, e.g. "72h". Empty or
	// "0" keeps them forever. The sweeper runs in its own process and does
	// not see the API's jobs, so a job can still report done with a url
	// whose file has already been swept; that url then answers 404.
	Retention string `toml:"retention"`

	retention time.Duration
}

func DefaultConfig() Config {
	return Config{
		Port:            "8080",
		StoreDir:        "./data",
		FontPath:        "DejaVuSans.ttf",
		FontSize:        64,
		FFmpegPath:      "ffmpeg",
		FrontendURL:     "*",
		LogLevel:        "info",
		JanitorSchedule: "@every 15m",
	}
}

// LoadConfig reads .env if present and builds the Config.
func LoadConfig() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path := os.Getenv("SLIDESHORTS_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.StoreDir, "STORE_DIR")
	overrideString(&cfg.FontPath, "FONT_PATH")
	overrideString(&cfg.FFmpegPath, "FFMPEG_PATH")
	overrideString(&cfg.RedisURL, "REDIS_URL")
	overrideString(&cfg.PublicBaseURL, "PUBLIC_BASE_URL")
	overrideString(&cfg.FrontendURL, "FRONTEND_URL")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.JanitorSchedule, "JANITOR_SCHEDULE")
	overrideString(&cfg.Retention, "RETENTION")
	if v := os.Getenv("FONT_SIZE"); v != "" {
		size, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("FONT_SIZE: %w", err)
		}
		cfg.FontSize = size
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) normalize() error {
	abs, err := filepath.Abs(c.StoreDir)
	if err != nil {
		return fmt.Errorf("store dir %q: %w", c.StoreDir, err)
	}
	c.StoreDir = abs

	switch c.Retention {
	case "", "0":
		c.retention = 0
	default:
		d, err := time.ParseDuration(c.Retention)
		if err != nil {
			return fmt.Errorf("retention %q: %w", c.Retention, err)
		}
		if d < 0 {
			return fmt.Errorf("retention %q: must not be negative", c.Retention)
		}
		c.retention = d
	}
	return nil
}

// RetentionPeriod is the parsed Retention; zero means keep forever.
func (c Config) RetentionPeriod() time.Duration {
	return c.retention
}

// EnsureStoreDir creates the video directory.
func (c Config) EnsureStoreDir() error {
	return os.MkdirAll(c.StoreDir, 0o755)
}
