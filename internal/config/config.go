package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"novelhub/moderation-service/pkg/db"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "MODERATION_CONFIG"
)

// Config holds all settings of the moderation service.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Auth     AuthConfig     `yaml:"auth"`
	Timezone string         `yaml:"timezone"`
	LogLevel string         `yaml:"logLevel"`

	location *time.Location
}

type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Name         string        `yaml:"name"`
	MaxOpenConns int           `yaml:"maxOpenConns"`
	MaxIdleConns int           `yaml:"maxIdleConns"`
	ConnLifetime time.Duration `yaml:"connLifetime"`
}

type RedisConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type GRPCConfig struct {
	Port string `yaml:"port"`
}

// AuthConfig carries the shared HS256 secret of the identity service.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
	Issuer    string `yaml:"issuer"`
}

// Location resolves the configured timezone, UTC when unknown.
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	return time.UTC
}

// DB converts the database section into connection settings.
func (c Config) DB() db.Config {
	return db.Config{
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Name,
		Location:        c.Location(),
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnLifetime,
	}
}

// Load reads .env, then the YAML file named by MODERATION_CONFIG (if any),
// then applies environment overrides. Problems are logged and defaults kept.
func Load(log logrus.FieldLogger) Config {
	if err := godotenv.Load(); err != nil {
		log.Debugf("config: .env file not loaded: %v", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Warnf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Warnf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone(log)

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v, ok := os.LookupEnv("DB_PASSWORD"); ok {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_DATABASE"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		c.HTTP.Port = v
	}
	if v := os.Getenv("GRPC_PORT"); v != "" {
		c.GRPC.Port = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) bindTimezone(log logrus.FieldLogger) {
	tz := c.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Warnf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		tz = defaultTimezone
		loc = time.UTC
	}
	c.Timezone = tz
	c.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Host != "" {
		base.Database.Host = override.Database.Host
	}
	if override.Database.Port != 0 {
		base.Database.Port = override.Database.Port
	}
	if override.Database.User != "" {
		base.Database.User = override.Database.User
	}
	if override.Database.Password != "" {
		base.Database.Password = override.Database.Password
	}
	if override.Database.Name != "" {
		base.Database.Name = override.Database.Name
	}
	if override.Database.MaxOpenConns != 0 {
		base.Database.MaxOpenConns = override.Database.MaxOpenConns
	}
	if override.Database.MaxIdleConns != 0 {
		base.Database.MaxIdleConns = override.Database.MaxIdleConns
	}
	if override.Database.ConnLifetime != 0 {
		base.Database.ConnLifetime = override.Database.ConnLifetime
	}

	if override.Redis.URL != "" {
		base.Redis = override.Redis
	}

	if override.HTTP.Port != "" {
		base.HTTP.Port = override.HTTP.Port
	}
	if override.HTTP.ShutdownTimeout != 0 {
		base.HTTP.ShutdownTimeout = override.HTTP.ShutdownTimeout
	}
	if override.GRPC.Port != "" {
		base.GRPC.Port = override.GRPC.Port
	}

	if override.Auth.JWTSecret != "" {
		base.Auth.JWTSecret = override.Auth.JWTSecret
	}
	if override.Auth.Issuer != "" {
		base.Auth.Issuer = override.Auth.Issuer
	}

	if override.Timezone != "" {
		base.Timezone = override.Timezone
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         3306,
			User:         "root",
			Name:         "novelhub",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			ConnLifetime: 5 * time.Minute,
		},
		Redis:    RedisConfig{URL: "redis://localhost:6379/0"},
		HTTP:     HTTPConfig{Port: "8080", ShutdownTimeout: 10 * time.Second},
		GRPC:     GRPCConfig{Port: "50070"},
		Timezone: defaultTimezone,
		LogLevel: "info",
	}
}
