package core

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	_ "modernc.org/sqlite"
)

const mysqlConnectAttempts = 10

// OpenDatabase connects gorm to MySQL or to a SQLite file.
func OpenDatabase(cfg ConfigurationDatabase, logger *log.Logger) (*gorm.DB, error) {
	var (
		ormDB *gorm.DB
		err   error
	)

	switch cfg.Driver {
	case "mysql":
		ormDB, err = openMySQL(cfg, logger)
	case "", "sqlite", "sqlite3":
		ormDB, err = OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	ormDB.LogMode(cfg.Debug)
	return ormDB, nil
}

func openMySQL(cfg ConfigurationDatabase, logger *log.Logger) (*gorm.DB, error) {
	dataSourceName := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	var lastErr error
	for attempt := 1; attempt <= mysqlConnectAttempts; attempt++ {
		ormDB, err := gorm.Open("mysql", dataSourceName)
		if err == nil {
			ormDB.Exec("SET time_zone = \"+00:00\"")
			return ormDB, nil
		}
		lastErr = err
		logger.Warn("connecting to database", "attempt", attempt, "err", err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("connect mysql: %w", lastErr)
}

// OpenSQLite opens a SQLite database file through the pure Go driver.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = "coachkit.db"
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	ormDB, err := gorm.Open("sqlite3", sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return ormDB, nil
}
