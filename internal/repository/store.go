package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DBConfig holds the connection settings for the conversation state database.
type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
}

// Open creates a bounded MySQL connection pool for the state tables.
func Open(cfg DBConfig) (*sql.DB, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("repository: db host must not be empty")
	}
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, errors.New("repository: db name must not be empty")
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Host
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Name
	mc.ParseTime = true

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("repository: open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
