package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"chatserver-backend/internal/models"
)

func setPragmaValues(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	// these next 2 extremely speed up performance of sqlite
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return err
	}

	if _, err := db.Exec("PRAGMA synchronous = normal"); err != nil {
		return err
	}

	return nil
}

func Setup(cfg *models.ConfigFile) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	if cfg.SelfContained {
		path := cfg.DatabaseURL
		if path == "" {
			path = "./database.db"
		}

		db, err = sqlx.Open("sqlite", path)
		if err != nil {
			return nil, err
		}

		// there can be sqlite busy errors if this is not set to 1
		db.SetMaxOpenConns(1)

		err = setPragmaValues(db)
		if err != nil {
			return nil, err
		}
	} else {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("no database connection string configured")
		}

		db, err = sqlx.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	err = setupTables(db)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func setupTables(db *sqlx.DB) error {
	var statements []string

	if db.DriverName() == "sqlite" {
		statements = sqliteSchema
	} else {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		username VARCHAR(32) NOT NULL,
		email VARCHAR(64) NOT NULL,
		password_hash TEXT NOT NULL,
		avatar_url TEXT,
		status VARCHAR(16) NOT NULL DEFAULT 'offline',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ,
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	);`,

	`CREATE TABLE IF NOT EXISTS servers (
		server_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		server_name VARCHAR(64) NOT NULL,
		owner_user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		icon_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ,
		CONSTRAINT servers_server_name_key UNIQUE (server_name)
	);`,

	`CREATE TABLE IF NOT EXISTS server_members (
		server_id BIGINT NOT NULL REFERENCES servers(server_id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		nickname VARCHAR(64),
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (server_id, user_id)
	);`,

	`CREATE TABLE IF NOT EXISTS channels (
		channel_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		server_id BIGINT REFERENCES servers(server_id) ON DELETE CASCADE,
		name VARCHAR(64) NOT NULL,
		type VARCHAR(16) NOT NULL DEFAULT 'standard',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ,
		CHECK (type IN ('standard', 'dm')),
		CHECK ((server_id IS NULL) = (type = 'dm'))
	);`,

	`CREATE TABLE IF NOT EXISTS messages (
		message_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		channel_id BIGINT NOT NULL REFERENCES channels(channel_id) ON DELETE CASCADE,
		author_user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ,
		edited_at TIMESTAMPTZ
	);`,

	`CREATE TABLE IF NOT EXISTS direct_message_members (
		channel_id BIGINT NOT NULL REFERENCES channels(channel_id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		PRIMARY KEY (channel_id, user_id)
	);`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY,
		username VARCHAR(32) NOT NULL UNIQUE,
		email VARCHAR(64) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		avatar_url TEXT,
		status VARCHAR(16) NOT NULL DEFAULT 'offline',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP
	);`,

	`CREATE TABLE IF NOT EXISTS servers (
		server_id INTEGER PRIMARY KEY,
		server_name VARCHAR(64) NOT NULL UNIQUE,
		owner_user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		icon_url TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP
	);`,

	`CREATE TABLE IF NOT EXISTS server_members (
		server_id INTEGER NOT NULL REFERENCES servers(server_id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		nickname VARCHAR(64),
		joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (server_id, user_id)
	);`,

	`CREATE TABLE IF NOT EXISTS channels (
		channel_id INTEGER PRIMARY KEY,
		server_id INTEGER REFERENCES servers(server_id) ON DELETE CASCADE,
		name VARCHAR(64) NOT NULL,
		type VARCHAR(16) NOT NULL DEFAULT 'standard',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP,
		CHECK (type IN ('standard', 'dm')),
		CHECK ((server_id IS NULL) = (type = 'dm'))
	);`,

	`CREATE TABLE IF NOT EXISTS messages (
		message_id INTEGER PRIMARY KEY,
		channel_id INTEGER NOT NULL REFERENCES channels(channel_id) ON DELETE CASCADE,
		author_user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP,
		edited_at TIMESTAMP
	);`,

	`CREATE TABLE IF NOT EXISTS direct_message_members (
		channel_id INTEGER NOT NULL REFERENCES channels(channel_id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		PRIMARY KEY (channel_id, user_id)
	);`,
}
