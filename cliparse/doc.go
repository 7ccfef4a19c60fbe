// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded before anything else. Values
already present in the environment win over the file.

# Config Fields

  - Port: Server listen port (default: 8888)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - PasswordUpgradeCost: Price of one hash upgrade (default: 1000)
  - MaxPasswordLength: Longest password accepted by an upgrade (default: 7)
  - SourceCodeMarketDir: Where purchased source code is stored
  - SessionTTL: Login session lifetime (default: 24h)
  - Debug: Verbose logging of Federal Reserve commands

# CLI Flags

	-p                    Server port
	-d                    Database URL
	-t                    Database type
	-password-upgrade     Hash upgrade cost
	-max-password-length  Upgrade password limit
	-source-dir           Source code market directory
	-session-ttl          Session lifetime
	-debug                Debug logging

# Environment Variables

Flags fall back to environment variables:

	PORT                   → -p
	DATABASE_URL           → -d
	DATABASE_TYPE          → -t
	PASSWORD_UPGRADE_COST  → -password-upgrade
	MAX_PASSWORD_LENGTH    → -max-password-length
	SOURCE_CODE_MARKET_DIR → -source-dir
	SESSION_TTL            → -session-ttl
	DEBUG                  → -debug

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if DATABASE_URL is missing, if DATABASE_TYPE is not
sqlite or postgres, or if a numeric setting does not parse.
*/
package cliparse
