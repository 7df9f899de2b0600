package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	Port          int
	LogLevel      log.Level
	AutoMigrate   bool
	RedisURL      string
	BoardCacheTTL time.Duration
	DB            DBConfig
}

// DBConfig describes the PostgreSQL connection and pool.
type DBConfig struct {
	Host            string
	Port            string
	Database        string
	Username        string
	Password        string
	Schema          string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the key/value connection string understood by the postgres driver.
func (c DBConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.Username, c.Password, c.Database, c.Port)
	if c.Schema != "" {
		dsn += " search_path=" + c.Schema
	}
	return dsn
}

// Load reads the configuration from the process environment. A .env file in
// the working directory is loaded first.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:          8080,
		LogLevel:      log.InfoLevel,
		AutoMigrate:   true,
		RedisURL:      getenv("REDIS_URL"),
		BoardCacheTTL: 5 * time.Minute,
		DB: DBConfig{
			Host:            getenv("BLUEPRINT_DB_HOST"),
			Port:            getenv("BLUEPRINT_DB_PORT"),
			Database:        getenv("BLUEPRINT_DB_DATABASE"),
			Username:        getenv("BLUEPRINT_DB_USERNAME"),
			Password:        getenv("BLUEPRINT_DB_PASSWORD"),
			Schema:          getenv("BLUEPRINT_DB_SCHEMA"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
	}
	if cfg.DB.Port == "" {
		cfg.DB.Port = "5432"
	}

	var err error
	if v := getenv("PORT"); v != "" {
		if cfg.Port, err = positiveInt("PORT", v); err != nil {
			return nil, err
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if cfg.LogLevel, err = log.ParseLevel(v); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	if v := getenv("DB_AUTO_MIGRATE"); v != "" {
		if cfg.AutoMigrate, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
		}
	}
	if v := getenv("BOARD_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid BOARD_CACHE_TTL %q", v)
		}
		cfg.BoardCacheTTL = d
	}
	if v := getenv("DB_MAX_IDLE_CONNS"); v != "" {
		if cfg.DB.MaxIdleConns, err = positiveInt("DB_MAX_IDLE_CONNS", v); err != nil {
			return nil, err
		}
	}
	if v := getenv("DB_MAX_OPEN_CONNS"); v != "" {
		if cfg.DB.MaxOpenConns, err = positiveInt("DB_MAX_OPEN_CONNS", v); err != nil {
			return nil, err
		}
	}
	if v := getenv("DB_CONN_MAX_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q", v)
		}
		cfg.DB.ConnMaxLifetime = d
	}
	return cfg, nil
}

func positiveInt(name, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be greater than zero", name)
	}
	return n, nil
}
