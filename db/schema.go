// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the configured database and verifies the connection.
// dbType is "postgres" or "sqlite".
func Open(dbType, url string) (*sql.DB, error) {
	if dbType != "postgres" && dbType != "sqlite" {
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbType == "sqlite" {
		// One writer at a time, and :memory: databases are per connection
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Schema is written in the subset of SQL shared by PostgreSQL and SQLite.
const Schema = `
-- Teams
CREATE TABLE IF NOT EXISTS team (
    id TEXT PRIMARY KEY,
    uuid TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL UNIQUE,
    money BIGINT NOT NULL DEFAULT 0
);

-- Users ("user" is reserved in PostgreSQL)
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    uuid TEXT NOT NULL UNIQUE,
    handle TEXT NOT NULL UNIQUE,
    team_id TEXT NOT NULL REFERENCES team(id) ON DELETE CASCADE,
    algorithm TEXT NOT NULL DEFAULT 'md5',
    password TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_app_user_team_id ON app_user(team_id);

-- Black Market items owned by a team
CREATE TABLE IF NOT EXISTS team_item (
    team_id TEXT NOT NULL REFERENCES team(id) ON DELETE CASCADE,
    item_name TEXT NOT NULL,
    PRIMARY KEY (team_id, item_name)
);

-- Boxes
CREATE TABLE IF NOT EXISTS box (
    id TEXT PRIMARY KEY,
    uuid TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL UNIQUE
);

-- Leaked source code, at most one per box
CREATE TABLE IF NOT EXISTS source_code (
    id TEXT PRIMARY KEY,
    uuid TEXT NOT NULL UNIQUE,
    box_id TEXT NOT NULL UNIQUE REFERENCES box(id) ON DELETE CASCADE,
    price BIGINT NOT NULL CHECK (price >= 0),
    file_name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

-- Purchased source code
CREATE TABLE IF NOT EXISTS team_source_code (
    team_id TEXT NOT NULL REFERENCES team(id) ON DELETE CASCADE,
    source_code_id TEXT NOT NULL REFERENCES source_code(id) ON DELETE CASCADE,
    PRIMARY KEY (team_id, source_code_id)
);

-- Cracked passwords
CREATE TABLE IF NOT EXISTS wall_of_sheep (
    id TEXT PRIMARY KEY,
    preimage TEXT NOT NULL,
    cracker_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    victim_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    value BIGINT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_wall_of_sheep_victim_id ON wall_of_sheep(victim_id);

-- Bribes paid to SWAT a user
CREATE TABLE IF NOT EXISTS swat_request (
    id TEXT PRIMARY KEY,
    uuid TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    target_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    bribe BIGINT NOT NULL CHECK (bribe >= 0),
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'in_progress', 'completed')),
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_swat_request_user_id ON swat_request(user_id);

-- Notifications, user_id NULL means broadcast
CREATE TABLE IF NOT EXISTS notification (
    id TEXT PRIMARY KEY,
    user_id TEXT REFERENCES app_user(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

-- Login sessions
CREATE TABLE IF NOT EXISTS session (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    expires_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_user_id ON session(user_id);
`
