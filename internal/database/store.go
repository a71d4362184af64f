// Package database implements relational persistence for events, users
// and registrations, plus the MongoDB attendance scan log.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"campusconnect/internal/config"
)

const (
	driverMySQL  = "mysql"
	driverSQLite = "sqlite"
)

// Store is the relational store. The driver is selected by
// configuration: MySQL for a networked deployment, SQLite for an
// embedded file store (also used by the tests).
type Store struct {
	db     *sql.DB
	driver string
}

func New(conf *config.Config) (*Store, error) {
	return Open(conf.Database.Driver, conf.Database.DSN)
}

func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case driverMySQL:
		if dsn != "" && !hasParseTime(dsn) {
			dsn += "?parseTime=true"
		}
	case driverSQLite:
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	if driver == driverSQLite {
		// a single connection serialises writers and avoids
		// "database is locked" errors
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Hour)
	}

	// wait for a database to start
	for i := 0; i < 3; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i == 2 {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		time.Sleep(10 * time.Second)
	}

	store := &Store{db: db, driver: driver}
	if err = store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

func (s *Store) Close() {
	_ = s.db.Close()
}

func hasParseTime(dsn string) bool {
	for i := 0; i+9 <= len(dsn); i++ {
		if dsn[i:i+9] == "parseTime" {
			return true
		}
	}
	return false
}

// initSchema creates the tables. The DDL is restricted to the dialect
// both drivers accept; timestamps are stored as sortable UTC strings.
func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(10) NOT NULL,
			phone VARCHAR(20) NOT NULL DEFAULT '',
			guest_code VARCHAR(50) NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at VARCHAR(20) NOT NULL,
			updated_at VARCHAR(20) NOT NULL,
			UNIQUE (email),
			UNIQUE (guest_code)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NULL,
			location VARCHAR(255) NOT NULL,
			start_time VARCHAR(20) NOT NULL,
			end_time VARCHAR(20) NOT NULL,
			capacity INT NULL,
			active TINYINT NOT NULL DEFAULT 1,
			qr_token VARCHAR(36) NULL,
			qr_issued_at VARCHAR(20) NULL,
			created_at VARCHAR(20) NOT NULL,
			updated_at VARCHAR(20) NOT NULL,
			UNIQUE (qr_token)
		)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id VARCHAR(36) PRIMARY KEY,
			event_id VARCHAR(36) NOT NULL,
			user_id VARCHAR(36) NOT NULL,
			status VARCHAR(20) NOT NULL,
			checked_in_at VARCHAR(20) NULL,
			attendance_code VARCHAR(10) NULL,
			created_at VARCHAR(20) NOT NULL,
			updated_at VARCHAR(20) NOT NULL,
			UNIQUE (user_id, event_id),
			UNIQUE (event_id, attendance_code),
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// isUniqueViolation recognises a unique-constraint failure from either
// driver; the constraint is the backstop for duplicate registrations
// and reused emails, guest codes and attendance codes.
func isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT,
			sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
