package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Addr                     string
	Env                      string
	DatabaseURL              string
	AuthSecret               string
	TokenTTL                 time.Duration
	WordsDir                 string
	WordWeights              map[string]float64
	AllowedOrigins           []string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	ShutdownTimeout          time.Duration
}

func Default() Config {
	return Config{
		Addr:                     ":8080",
		Env:                      "development",
		TokenTTL:                 24 * time.Hour,
		WordsDir:                 "words",
		AllowedOrigins:           []string{"localhost:*", "127.0.0.1:*"},
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		ShutdownTimeout:          10 * time.Second,
	}
}

// IsProduction reports whether APP_ENV selects production logging.
func (c Config) IsProduction() bool { return c.Env == "production" }

// Load reads the environment on top of Default. Malformed numbers keep the
// default; a malformed WORD_WEIGHTS is an error.
func Load() (Config, error) {
	cfg := Default()
	if raw := os.Getenv("ADDR"); raw != "" {
		cfg.Addr = raw
	} else if raw := os.Getenv("PORT"); raw != "" {
		cfg.Addr = ":" + raw
	}
	if raw := os.Getenv("APP_ENV"); raw != "" {
		cfg.Env = raw
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.AuthSecret = os.Getenv("AUTH_SECRET")
	if raw := os.Getenv("TOKEN_TTL_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TokenTTL = time.Duration(value) * time.Hour
		}
	}
	if raw := os.Getenv("WORDS_DIR"); raw != "" {
		cfg.WordsDir = raw
	}
	if raw := os.Getenv("WORD_WEIGHTS"); raw != "" {
		weights, err := ParseWeights(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.WordWeights = weights
	}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		cfg.AllowedOrigins = splitList(raw)
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ShutdownTimeout = time.Duration(value) * time.Second
		}
	}
	return cfg, nil
}

// ParseWeights parses "words=1,animals=2.5" into a weight per list name.
func ParseWeights(raw string) (map[string]float64, error) {
	weights := map[string]float64{}
	for _, part := range splitList(raw) {
		name, value, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("word weight %q: want name=weight", part)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("word weight %q: invalid weight", part)
		}
		weights[name] = w
	}
	return weights, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
