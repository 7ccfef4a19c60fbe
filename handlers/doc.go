// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Black Market.

# Handler Types

  - SessionHandler: Login and logout
  - PasswordSecurityHandler: Paid upgrades along md5 → sha1 → sha256 → bcrypt
  - FederalReserveHandler: Bank terminal with ls, info and xfer commands
  - SourceCodeMarketHandler: Buying and downloading leaked box source code
  - SwatHandler: Bribing the admins to SWAT another user

Handlers are created via constructor functions:

	h := handlers.NewFederalReserveHandler(db, cfg, renderer, events)

# Transactions

Every operation that moves money runs its checks and writes inside one
transaction. Checks that fail return a userError whose text is shown to
the player unchanged.

# Transfers

xfer only succeeds with the cracked password of a user on the source
account. The destination receives floor(amount * 0.85), the cracked
password lands on the wall of sheep and a notification is broadcast.
*/
package handlers
