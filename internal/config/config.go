package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Coupon    CouponConfig
	Mail      MailConfig
	Storage   StorageConfig
	LogLevel  string
	LogFormat string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
	Mode         string // gin mode: debug, release or test
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
	// Transactions requires a replica set. When false, award announcement
	// falls back to a compensating compare-and-swap.
	Transactions bool
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret string
}

// AdminConfig holds admin-specific configuration
type AdminConfig struct {
	// SuperPasswordHash is the bcrypt hash checked before destructive admin actions.
	SuperPasswordHash string
}

// CouponConfig holds coupon issuance and lifecycle configuration
type CouponConfig struct {
	CodePrefix      string
	ExpiresIn       time.Duration
	MaxCodeAttempts int
	DefaultCurrency string
	// SweepInterval enables the in-process expiration sweep when > 0.
	SweepInterval time.Duration
}

// MailConfig holds SMTP configuration
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Mock     bool
	Timeout  time.Duration
}

// StorageConfig selects the repository driver
type StorageConfig struct {
	Driver string // mongodb or memory
}

// Storage drivers
const (
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Load loads configuration from environment variables and an optional
// config.yaml found in path or path/config
func Load(path string) (*Config, error) {
	if path == "" {
		path = "."
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(path + "/config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Unmarshal configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the values the services cannot run without
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongoDB, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Coupon.CodePrefix == "" {
		return errors.New("coupon code prefix must not be empty")
	}
	if c.Coupon.MaxCodeAttempts < 1 {
		return errors.New("coupon max code attempts must be at least 1")
	}
	if c.Coupon.ExpiresIn <= 0 {
		return errors.New("coupon expiry must be positive")
	}
	if len(c.Coupon.DefaultCurrency) != 3 {
		return fmt.Errorf("default currency %q is not a 3-letter code", c.Coupon.DefaultCurrency)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	v.SetDefault("Server.Mode", "release")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "fundraiser")
	v.SetDefault("MongoDB.Timeout", 10*time.Second)
	v.SetDefault("MongoDB.Transactions", true)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("Admin.SuperPasswordHash", "")
	v.SetDefault("Coupon.CodePrefix", "FU")
	v.SetDefault("Coupon.ExpiresIn", 365*24*time.Hour)
	v.SetDefault("Coupon.MaxCodeAttempts", 10)
	v.SetDefault("Coupon.DefaultCurrency", "USD")
	v.SetDefault("Coupon.SweepInterval", time.Duration(0))
	v.SetDefault("Mail.Host", "localhost")
	v.SetDefault("Mail.Port", 587)
	v.SetDefault("Mail.Username", "")
	v.SetDefault("Mail.Password", "")
	v.SetDefault("Mail.From", "no-reply@localhost")
	v.SetDefault("Mail.Mock", true)
	v.SetDefault("Mail.Timeout", 10*time.Second)
	v.SetDefault("Storage.Driver", DriverMongoDB)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "text")
}
