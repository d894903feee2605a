package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database from environment configuration.
// DB_DRIVER selects the dialect ("mysql" default, "sqlite" for local runs),
// DB_DSN overrides the full connection string.
//
// TranslateError is required: the session store relies on
// gorm.ErrDuplicatedKey to detect the admission-control race.
func InitDB() (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}

	dsn := os.Getenv("DB_DSN")

	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = "tablesync.db"
		}
		return gorm.Open(sqlite.Open(dsn), cfg)
	case "mysql":
		if dsn == "" {
			user := getenvDefault("DB_USER", "root")
			pass := os.Getenv("DB_PASS")
			host := getenvDefault("DB_HOST", "127.0.0.1")
			port := getenvDefault("DB_PORT", "3306")
			name := getenvDefault("DB_NAME", "tablesync")
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				user, pass, host, port, name)
		}
		return gorm.Open(mysql.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", driver)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
