// Package crypto provides the scrypt hashing scheme shared with the staff portal.
package crypto

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/scrypt"
)

// Scrypt parameters matching the staff portal implementation.
// N=16384 (2^14), r=8, p=1 are recommended for interactive logins.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// HashWithScrypt hashes an input string using scrypt with the given salt.
// The salt is lowercased before use. Returns hex-encoded hash.
func HashWithScrypt(input, salt string) (string, error) {
	saltBytes := []byte(strings.ToLower(salt))
	dk, err := scrypt.Key([]byte(input), saltBytes, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("scrypt key derivation failed: %w", err)
	}
	return hex.EncodeToString(dk), nil
}

// DaySaltedHash hashes a password salted with the current UTC day of month.
// The portal computes the same hash client-side, so the plaintext password
// never crosses the wire.
func DaySaltedHash(password string) (string, error) {
	utcDay := strconv.Itoa(time.Now().UTC().Day())
	return HashWithScrypt(password, utcDay)
}
