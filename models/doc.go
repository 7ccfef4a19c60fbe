// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain and response types for the Black Market.

# Domain Types

Database-backed entities:

  - Team: name and shared money balance
  - User: handle, team, hashing algorithm and password hash
  - Box: a CTF target, optionally with SourceCode for sale
  - SourceCode: price and file name of leaked code
  - WallOfSheep: a cracked password and the money it moved
  - SwatRequest: a bribe paid to SWAT a user
  - Notification: a message shown to players

Internal IDs are never serialised; public references use the UUID fields.

# Item Names

Upgrades are gated on Black Market items owned by the user's team:

	models.ItemPasswordSecurity  // "Password Security"
	models.ItemFederalReserve    // "Federal Reserve"
	models.ItemSourceCodeMarket  // "Source Code Market"
	models.ItemSWAT              // "SWAT"

# Response Types

Federal Reserve JSON responses:

  - AccountsResponse: accounts
  - UsersResponse: users (handle → account, algorithm, password hash)
  - AccountInfoResponse: name, balance, users
  - ReserveResponse: success or error
  - InvalidDataResponse: Error
  - ErrorResponse: error, message
*/
package models
