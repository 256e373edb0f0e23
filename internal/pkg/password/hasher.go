// Package password hashes user passwords with bcrypt and verifies every
// format the users table has historically held.
//
// Supported encodings for Verify:
//
//	$2a$10$...                              bcrypt (current)
//	pbkdf2:sha256:600000$<salt>$<hex>       Werkzeug PBKDF2
//	scrypt:32768:8:1$<salt>$<hex>           Werkzeug scrypt
//	$argon2id$v=19$m=..,t=..,p=..$<b64>$<b64> PHC argon2id
//
// Anything else, including the google_auth and placeholder_hash sentinels,
// never verifies.
package password

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is safe for concurrent use.
type Hasher struct {
	cost int
}

// New returns a Hasher producing bcrypt hashes with the given cost.
// Out-of-range costs fall back to bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches encoded. It returns false for
// malformed input instead of an error.
func (h *Hasher) Verify(password, encoded string) bool {
	switch {
	case isBcrypt(encoded):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	case strings.HasPrefix(encoded, "$argon2id$"):
		return verifyArgon2(password, encoded)
	case strings.HasPrefix(encoded, "pbkdf2:"):
		return verifyPBKDF2(password, encoded)
	case strings.HasPrefix(encoded, "scrypt:"):
		return verifyScrypt(password, encoded)
	default:
		return false
	}
}

// NeedsRehash reports whether encoded should be replaced by a fresh Hash.
func (h *Hasher) NeedsRehash(encoded string) bool {
	if !isBcrypt(encoded) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return true
	}
	return cost != h.cost
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}
