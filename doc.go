// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Black Market server.

The Black Market is the store of a capture-the-flag scoring game. Teams
spend money on items that unlock upgrade pages: stronger password hashing,
the Federal Reserve bank terminal, leaked source code for game boxes and
bribes that send a SWAT team after another player.

# Starting the Server

Configuration comes from CLI flags, environment variables or a .env file:

	go run . -t sqlite -d blackmarket.db

Or against PostgreSQL:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run .

# Configuration

  - PORT (-p): Server port (default: 8888)
  - DATABASE_URL (-d): Connection string or SQLite file
  - DATABASE_TYPE (-t): postgres or sqlite (default: sqlite)
  - PASSWORD_UPGRADE_COST (-password-upgrade): Price of one hash upgrade
  - MAX_PASSWORD_LENGTH (-max-password-length): Longest new password
  - SOURCE_CODE_MARKET_DIR (-source-dir): Base64 encoded source code files
  - SESSION_TTL (-session-ttl): Login session lifetime
  - DEBUG (-debug): Log at debug level

# Architecture

  - handlers: Upgrade pages, bank commands and sessions
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, authentication, item checks, JSON helpers
  - views: Embedded HTML templates
  - events: Game notifications
  - forms: Form validation and argument reading
  - metrics: Prometheus counters
  - models: Domain and response types
  - auth: Password hashing ladder and tokens
  - db: Connection and schema
  - cliparse: Configuration parsing
*/
package main
