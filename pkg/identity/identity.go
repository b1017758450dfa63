// Package identity turns a user-chosen nickname into a stable opaque user id.
// There is no authentication here: anyone who knows a nickname gets its id.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// IDLength is the number of hex characters kept from the digest.
const IDLength = 16

// ErrEmptyLabel is returned when a label normalizes to the empty string.
var ErrEmptyLabel = errors.New("identity: label is empty")

// Normalize trims, applies NFKC and lowercases a label so that visually
// equivalent nicknames map to the same id.
func Normalize(label string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(label)))
}

// DeriveID returns the opaque id for label.
func DeriveID(label string) (string, error) {
	normalized := Normalize(label)
	if normalized == "" {
		return "", ErrEmptyLabel
	}

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:IDLength], nil
}
