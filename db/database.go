package db

import (
	"database/sql"
	"fmt"

	"OtoDist/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// Connect opens the raw database/sql handle used by the aggregate queries.
// The GORM connection (gorm.go) coexists with it; both point at the same
// database.
func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqlDB, nil
}
