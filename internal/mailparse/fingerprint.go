package mailparse

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint returns the hex MD5 of subject, sender and body concatenated.
// Equal inputs always yield equal fingerprints.
func Fingerprint(subject, sender, body string) string {
	sum := md5.Sum([]byte(subject + sender + body))
	return hex.EncodeToString(sum[:])
}
