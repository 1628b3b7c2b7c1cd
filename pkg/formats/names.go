package formats

import (
	"crypto/md5"
	"encoding/hex"
)

// Object and material names are limited to 63 characters by the scene hosts
// the exports are made for. Longer names keep a readable prefix and gain a
// hash suffix so they stay unique.
const (
	maxNameLength    = 59
	namePrefixLength = 48
	nameHashLength   = 10
)

// NormalizeName shortens names longer than 59 characters to a 48 character
// prefix, an underscore and the first 10 hex digits of the name's MD5 hash.
// The result is deterministic and NormalizeName(NormalizeName(x)) equals
// NormalizeName(x).
func NormalizeName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxNameLength {
		return name
	}
	sum := md5.Sum([]byte(name))
	return string(runes[:namePrefixLength]) + "_" + hex.EncodeToString(sum[:])[:nameHashLength]
}
