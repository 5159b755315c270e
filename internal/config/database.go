// internal/config/database.go
package config

import (
	"fmt"
)

// DSN builds the lib/pq connection string. Sessions run in UTC so stored
// timestamps compare the same way they were written.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s timezone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
