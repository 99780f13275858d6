package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Built-in credentials, usable only for local sqlite setups.
const (
	defaultJWTSecret     = "change-me-dental-inventory-secret"
	defaultAdminPassword = "admin123"
)

// Database drivers accepted in DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all runtime settings, read from the environment (and .env).
type Config struct {
	Port string `conf:"default:3000,env:PORT"`

	// Database
	DBDriver    string `conf:"default:sqlite,enum:postgres|sqlite,env:DB_DRIVER"`
	DatabaseURL string `conf:"env:DATABASE_URL,noprint"`
	SQLitePath  string `conf:"default:inventory.db,env:SQLITE_PATH"`

	// Auth
	JWTSecret     string `conf:"default:change-me-dental-inventory-secret,env:JWT_SECRET,noprint"`
	JWTTTLHours   int    `conf:"default:24,env:JWT_TTL_HOURS"`
	AdminEmail    string `conf:"default:admin@clinic.local,env:ADMIN_EMAIL"`
	AdminPassword string `conf:"default:admin123,env:ADMIN_PASSWORD,noprint"`

	// Inventory rules
	ImminentDays     int    `conf:"default:30,env:IMMINENT_DAYS"`
	StatusPrecedence string `conf:"default:expiry_first,enum:expiry_first|shortage_first,env:STATUS_PRECEDENCE"`
	UniqueItemNames  bool   `conf:"default:true,env:UNIQUE_ITEM_NAMES"`
	Timezone         string `conf:"default:Asia/Seoul,env:TIMEZONE"`

	// HTTP
	CORSOrigins string `conf:"default:*,env:CORS_ORIGINS"`
}

// Load reads configuration from environment variables with defaults.
// A missing .env file is not an error.
func Load() (*Config, error) {
	var cfg Config
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using process environment")
	}
	if _, err := conf.Parse("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.checkSecrets(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultSecrets names the secrets still set to their built-in values.
func (c *Config) DefaultSecrets() []string {
	var names []string
	if c.JWTSecret == defaultJWTSecret {
		names = append(names, "JWT_SECRET")
	}
	if c.AdminPassword == defaultAdminPassword {
		names = append(names, "ADMIN_PASSWORD")
	}
	return names
}

// checkSecrets refuses built-in secrets on postgres and warns about them
// on sqlite.
func (c *Config) checkSecrets() error {
	names := c.DefaultSecrets()
	if len(names) == 0 {
		return nil
	}
	if c.DBDriver == DriverPostgres {
		return fmt.Errorf("%s must be set when DB_DRIVER=postgres", strings.Join(names, ", "))
	}
	log.Printf("Warning: using built-in %s; set them before exposing the service", strings.Join(names, ", "))
	return nil
}

// Location resolves Timezone, falling back to a fixed KST offset when the
// zone database is unavailable.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}
