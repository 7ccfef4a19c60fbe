// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"postgres" uses github.com/lib/pq, "sqlite" uses modernc.org/sqlite. SQLite
connections are limited to one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The statements only use types both databases understand (TEXT, BIGINT), and
timestamps are stored as unix seconds.

# Tables

  - team: Name and shared money balance
  - app_user: Handle, team, hashing algorithm, password hash
  - team_item: Black Market items a team owns
  - box: CTF targets
  - source_code: Leaked code for sale, at most one per box
  - team_source_code: Purchases
  - wall_of_sheep: Cracked passwords and what they were worth
  - swat_request: Bribes paid to SWAT a user
  - notification: Events shown to players
  - session: Login sessions

# Relationships

	team 1──* app_user
	team 1──* team_item
	box 1──1 source_code
	team *──* source_code (via team_source_code)
	app_user 1──* wall_of_sheep (as cracker and as victim)
	app_user 1──* swat_request (as buyer and as target)
	app_user 1──* session
*/
package db
