package password

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// Werkzeug defaults used when the method string omits parameters.
const (
	defaultPBKDF2Iterations = 600000
	defaultScryptN          = 1 << 15
	defaultScryptR          = 8
	defaultScryptP          = 1
	scryptKeyLen            = 64

	maxPBKDF2Iterations = 10_000_000
	maxScryptN          = 1 << 20
	maxScryptR          = 32
	maxScryptP          = 16
	maxScryptMemory     = 1 << 30 // bytes, 128*r*N
	maxArgon2Memory     = 1 << 21 // KiB
)

// splitWerkzeug splits "<method>$<salt>$<hex>" into its parts.
func splitWerkzeug(encoded string) (method []string, salt string, sum []byte, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[1] == "" {
		return nil, "", nil, false
	}
	sum, err := hex.DecodeString(parts[2])
	if err != nil || len(sum) == 0 {
		return nil, "", nil, false
	}
	return strings.Split(parts[0], ":"), parts[1], sum, true
}

func verifyPBKDF2(password, encoded string) bool {
	method, salt, want, ok := splitWerkzeug(encoded)
	if !ok || len(method) > 3 {
		return false
	}

	digest := "sha256"
	if len(method) > 1 && method[1] != "" {
		digest = method[1]
	}
	var newHash func() hash.Hash
	switch digest {
	case "sha256":
		newHash = sha256.New
	case "sha512":
		newHash = sha512.New
	case "sha1":
		newHash = sha1.New
	default:
		return false
	}

	iterations := defaultPBKDF2Iterations
	if len(method) == 3 {
		n, err := strconv.Atoi(method[2])
		if err != nil || n < 1 || n > maxPBKDF2Iterations {
			return false
		}
		iterations = n
	}

	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(want), newHash)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func verifyScrypt(password, encoded string) bool {
	method, salt, want, ok := splitWerkzeug(encoded)
	if !ok {
		return false
	}

	params := []int{defaultScryptN, defaultScryptR, defaultScryptP}
	switch len(method) {
	case 1:
	case 4:
		for i, raw := range method[1:] {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 1 {
				return false
			}
			params[i] = v
		}
	default:
		return false
	}
	n, r, p := params[0], params[1], params[2]
	if n > maxScryptN || r > maxScryptR || p > maxScryptP || int64(128*r)*int64(n) > maxScryptMemory {
		return false
	}

	got, err := scrypt.Key([]byte(password), []byte(salt), n, r, p, len(want))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}

func verifyArgon2(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}
	if iterations < 1 || parallelism < 1 || memory > maxArgon2Memory {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(want))) //nolint:gosec // bounded by decode
	return subtle.ConstantTimeCompare(got, want) == 1
}
