package postgres

import (
	"fmt"

	"github.com/ledgerbank/transfer-engine/internal/pkg/config"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host              string
	Port              int
	Database          string
	User              string
	Password          string
	SSLMode           string
	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   string
	ConnMaxIdleTime   string
	HealthCheckPeriod string
}

// FromAppConfig adapts the application's DatabaseConfig into the
// connection-pool Config this package's constructor expects.
func FromAppConfig(c config.DatabaseConfig) *Config {
	return &Config{
		Host:              c.Host,
		Port:              c.Port,
		Database:          c.Database,
		User:              c.User,
		Password:          c.Password,
		SSLMode:           c.SSLMode,
		MaxOpenConns:      c.MaxOpenConns,
		MaxIdleConns:      c.MaxIdleConns,
		ConnMaxLifetime:   c.ConnMaxLifetime,
		ConnMaxIdleTime:   c.ConnMaxIdleTime,
		HealthCheckPeriod: c.HealthCheckPeriod,
	}
}

// ConnectionString builds a PostgreSQL connection string.
func (c *Config) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
