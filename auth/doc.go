// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing and token generation utilities.

# Hashing Algorithms

Passwords are hashed with one of four algorithms, weakest first:

	md5 → sha1 → sha256 → bcrypt

The digest algorithms produce unsalted hex strings. Teams holding the Federal
Reserve upgrade can list every hash, and cracking one lets them move money out
of the victim's account. Buying the
Password Security upgrade moves a user one step up the ladder:

	next := auth.NextAlgorithm(user.Algorithm)
	hashed, err := auth.HashPassword(next, newPassword)

bcrypt is the top of the ladder and rejects passwords longer than 72 bytes
with ErrPasswordTooLong.

# Validation

	ok := auth.ValidatePassword(user.Algorithm, user.Password, attempt)

Digest comparison is constant time.

# Session Tokens

Login sessions use random 32-byte (256-bit) secrets:

	token, err := auth.GenerateSessionToken()

Tokens are URL-safe base64 encoded without padding.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
