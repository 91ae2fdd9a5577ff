// Package config loads server settings from defaults, an optional YAML file
// and the environment, in that order of precedence (lowest first).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	Store           string        `yaml:"store"`
	MySQLDSN        string        `yaml:"mysql_dsn"`
	RedisAddr       string        `yaml:"redis_addr"`
	LogLevel        string        `yaml:"log_level"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MySQL           MySQLPool     `yaml:"mysql_pool"`
}

type MySQLPool struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		GRPCAddr:        ":50051",
		Store:           StoreMySQL,
		MySQLDSN:        "root:root@tcp(localhost:3306)/warehouse?parseTime=true",
		RedisAddr:       "localhost:6379",
		LogLevel:        "info",
		AutoMigrate:     true,
		ShutdownTimeout: 5 * time.Second,
		MySQL: MySQLPool{
			MaxOpenConns:    50,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.GRPCAddr, "GRPC_ADDR")
	setString(&cfg.Store, "STORE")
	setString(&cfg.MySQLDSN, "MYSQL_DSN")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTO_MIGRATE: %w", err)
		}
		cfg.AutoMigrate = b
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("mysql_dsn is required when store is %q", StoreMySQL)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.HTTPAddr == "" && c.GRPCAddr == "" {
		return fmt.Errorf("at least one of http_addr and grpc_addr is required")
	}
	return nil
}
