// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown hashing algorithm")
	ErrPasswordTooLong  = errors.New("password too long for algorithm")
)

// Hashing algorithms, weakest first
const (
	AlgorithmMD5    = "md5"
	AlgorithmSHA1   = "sha1"
	AlgorithmSHA256 = "sha256"
	AlgorithmBcrypt = "bcrypt"
)

// Algorithms is the upgrade ladder. A user's hash can only move forward.
var Algorithms = []string{AlgorithmMD5, AlgorithmSHA1, AlgorithmSHA256, AlgorithmBcrypt}

var digests = map[string]func() hash.Hash{
	AlgorithmMD5:    md5.New,
	AlgorithmSHA1:   sha1.New,
	AlgorithmSHA256: sha256.New,
}

// NextAlgorithm returns the algorithm one step up the ladder. The strongest
// algorithm returns itself and an unknown name returns the weakest.
func NextAlgorithm(current string) string {
	for i, name := range Algorithms {
		if name == current {
			if i+1 < len(Algorithms) {
				return Algorithms[i+1]
			}
			return name
		}
	}
	return Algorithms[0]
}

// IsStrongest reports whether no upgrade is left for the algorithm
func IsStrongest(algorithm string) bool {
	return algorithm == Algorithms[len(Algorithms)-1]
}

// HashPassword hashes a password with the named algorithm.
// Digest algorithms are unsalted hex so teams can crack each other's hashes.
func HashPassword(algorithm, password string) (string, error) {
	if algorithm == AlgorithmBcrypt {
		if len(password) > 72 {
			return "", ErrPasswordTooLong
		}
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return string(h), nil
	}

	newHash, ok := digests[algorithm]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}
	h := newHash()
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ValidatePassword checks a password against a stored hash
func ValidatePassword(algorithm, hashed, password string) bool {
	if algorithm == AlgorithmBcrypt {
		return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
	}

	candidate, err := HashPassword(algorithm, password)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hashed)) == 1
}

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateSessionToken creates a random secure token for a login session
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32) // 256 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}
